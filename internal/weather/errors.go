package weather

import "errors"

var (
	// ErrCityNotFound is returned when the upstream source has no match for a city name.
	ErrCityNotFound = errors.New("city not found")
	// ErrUnavailable covers network failures, non-success statuses and open circuits.
	ErrUnavailable = errors.New("weather data not available")
	// ErrGeolocationUnavailable is returned when a position cannot be determined.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
)
