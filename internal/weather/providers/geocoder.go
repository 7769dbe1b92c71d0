package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// geocoder keeps its API key in a package variable and makes its request
// without a timeout or context. The lock guards only the key write, never the
// lookup, so an abandoned lookup leaks its goroutine but does not block
// later calls.
var geocoderKeyMu sync.Mutex

func setGeocoderKey(key string) {
	geocoderKeyMu.Lock()
	defer geocoderKeyMu.Unlock()
	if geocoder.ApiKey != key {
		geocoder.ApiKey = key
	}
}

// GeocoderLocator resolves an address hint to coordinates with the Google
// geocoding API. It stands in for device geolocation when the client only
// knows roughly where it is.
type GeocoderLocator struct {
	apiKey  string
	City    string
	Country string

	geocode func(geocoder.Address) (geocoder.Location, error)
}

var _ weather.Locator = (*GeocoderLocator)(nil)

func NewGeocoderLocator(apiKey, city, country string) *GeocoderLocator {
	return &GeocoderLocator{apiKey: apiKey, City: city, Country: country, geocode: geocoder.Geocoding}
}

func (l *GeocoderLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if l.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("%w: geocoder api key is not configured", weather.ErrGeolocationUnavailable)
	}
	if common.Blank(l.City) && common.Blank(l.Country) {
		return weather.Coordinates{}, fmt.Errorf("%w: empty address", weather.ErrGeolocationUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	setGeocoderKey(l.apiKey)
	go func() {
		loc, err := l.geocode(geocoder.Address{
			City:    l.City,
			Country: l.Country,
		})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrGeolocationUnavailable, r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
