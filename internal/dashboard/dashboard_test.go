package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// fakeGateway serves canned records per city; coordinates are mapped back to
// the city by latitude.
type fakeGateway struct {
	mu      sync.Mutex
	cities  map[string]weather.CurrentConditions
	failOn  string // "current", "forecast", "air", "nearby"
	failErr error
	// block, when set, holds CurrentByCoordinates until released.
	block map[float64]chan struct{}
	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		cities: map[string]weather.CurrentConditions{
			"lisbon": {Name: "Lisbon", Country: "PT", TempC: 20, FeelsLikeC: 19, TempMinC: 15, TempMaxC: 25,
				Sunrise: 1000, Sunset: 1000 + 14*3600 + 30*60,
				Coordinates: weather.Coordinates{Lat: 38.7, Lon: -9.1}},
			"oslo": {Name: "Oslo", Country: "NO", TempC: -5, FeelsLikeC: -9, TempMinC: -8, TempMaxC: -1,
				Coordinates: weather.Coordinates{Lat: 59.9, Lon: 10.7}},
		},
		failErr: weather.ErrUnavailable,
		block:   make(map[float64]chan struct{}),
		calls:   make(map[string]int),
	}
}

func (f *fakeGateway) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeGateway) byLat(lat float64) weather.CurrentConditions {
	for _, c := range f.cities {
		if c.Coordinates.Lat == lat {
			return c
		}
	}
	return weather.CurrentConditions{Name: "Somewhere", Coordinates: weather.Coordinates{Lat: lat}}
}

func (f *fakeGateway) CurrentByCoordinates(ctx context.Context, c weather.Coordinates) (weather.CurrentConditions, error) {
	f.count("current")
	f.mu.Lock()
	ch := f.block[c.Lat]
	f.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return weather.CurrentConditions{}, ctx.Err()
		}
	}
	if f.failOn == "current" {
		return weather.CurrentConditions{}, f.failErr
	}
	return f.byLat(c.Lat), nil
}

func (f *fakeGateway) CurrentByCityName(_ context.Context, name string) (weather.CurrentConditions, error) {
	f.count("city")
	c, ok := f.cities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return weather.CurrentConditions{}, weather.ErrCityNotFound
	}
	return c, nil
}

func (f *fakeGateway) Forecast(_ context.Context, c weather.Coordinates) ([]weather.ForecastEntry, error) {
	f.count("forecast")
	if f.failOn == "forecast" {
		return nil, f.failErr
	}
	base := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	t := f.byLat(c.Lat).TempC
	return []weather.ForecastEntry{
		{Timestamp: base.Add(9 * time.Hour).Unix(), TempMinC: t - 2, TempMaxC: t + 1, Condition: weather.Condition{Icon: "01d"}},
		{Timestamp: base.Add(15 * time.Hour).Unix(), TempMinC: t - 1, TempMaxC: t + 3, Condition: weather.Condition{Icon: "02d"}},
		{Timestamp: base.Add(33 * time.Hour).Unix(), TempMinC: t - 4, TempMaxC: t, Condition: weather.Condition{Icon: "10d"}},
	}, nil
}

func (f *fakeGateway) AirQuality(_ context.Context, _ weather.Coordinates) (weather.AirQualitySample, error) {
	f.count("air")
	if f.failOn == "air" {
		return weather.AirQualitySample{}, f.failErr
	}
	return weather.AirQualitySample{AQI: 2, PM25: 4.2, PM10: 8.1}, nil
}

func (f *fakeGateway) NearbyCities(_ context.Context, c weather.Coordinates, count int) ([]weather.CurrentConditions, error) {
	f.count("nearby")
	if f.failOn == "nearby" {
		return nil, f.failErr
	}
	out := make([]weather.CurrentConditions, 0, count)
	for i := 0; i < count+2; i++ {
		out = append(out, weather.CurrentConditions{Name: "Nearby", TempC: f.byLat(c.Lat).TempC + float64(i)})
	}
	return out, nil
}

func newTestDashboard(gw weather.Gateway) *Dashboard {
	return New(gw, Options{NearbyCount: 4, ForecastDays: 5, Timezone: time.UTC})
}

func TestNewDashboardIsLoadingAndEmpty(t *testing.T) {
	d := newTestDashboard(newFakeGateway())

	s := d.Snapshot()
	assert.True(t, s.Loading)
	assert.Nil(t, s.Current)
	assert.Nil(t, s.Forecast)
	assert.Nil(t, s.AirQuality)
	assert.Nil(t, s.Nearby)
	assert.Equal(t, weather.Celsius, s.Unit)
	assert.Equal(t, weather.ThemeDark, s.Theme)
	assert.False(t, d.Located())
}

func TestLocateCommitsAllRecords(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)

	require.NoError(t, d.Locate(context.Background(), weather.Coordinates{Lat: 38.7, Lon: -9.1}))

	s := d.Snapshot()
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	require.NotNil(t, s.Current)
	assert.Equal(t, "Lisbon", s.Current.Name)
	assert.Len(t, s.Forecast, 3)
	require.NotNil(t, s.AirQuality)
	assert.Equal(t, 2, s.AirQuality.AQI)
	assert.Len(t, s.Nearby, 6)
	require.NotNil(t, s.Coordinates)
	assert.False(t, s.UpdatedAt.IsZero())
	assert.True(t, d.Located())

	for _, op := range []string{"current", "forecast", "air", "nearby"} {
		assert.Equal(t, 1, gw.calls[op], op)
	}
}

func TestFanOutFailureCommitsNothing(t *testing.T) {
	for _, op := range []string{"current", "forecast", "air", "nearby"} {
		t.Run(op, func(t *testing.T) {
			gw := newFakeGateway()
			d := newTestDashboard(gw)
			require.NoError(t, d.Locate(context.Background(), weather.Coordinates{Lat: 38.7}))
			before := d.Snapshot()

			gw.failOn = op
			err := d.Locate(context.Background(), weather.Coordinates{Lat: 59.9})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetchFailed)
			assert.ErrorIs(t, err, weather.ErrUnavailable)

			s := d.Snapshot()
			assert.False(t, s.Loading)
			assert.Equal(t, msgFetchFailed, s.Error)
			assert.Same(t, before.Current, s.Current)
			assert.Same(t, before.AirQuality, s.AirQuality)
			assert.Equal(t, before.Forecast, s.Forecast)
			assert.Equal(t, before.Nearby, s.Nearby)
			assert.Equal(t, "Lisbon", s.Current.Name)

			require.Len(t, s.Notifications, 1)
			assert.Equal(t, "Error", s.Notifications[0].Title)
			assert.NotEmpty(t, s.Notifications[0].ID)
		})
	}
}

func TestFanOutFailureOnFirstLoadLeavesRecordsAbsent(t *testing.T) {
	gw := newFakeGateway()
	gw.failOn = "air"
	d := newTestDashboard(gw)

	require.Error(t, d.Locate(context.Background(), weather.Coordinates{Lat: 38.7}))

	s := d.Snapshot()
	assert.Nil(t, s.Current)
	assert.Nil(t, s.Forecast)
	assert.Nil(t, s.Nearby)
	assert.False(t, s.Loading)
	assert.False(t, d.Located())
}

func TestSearchLoadsCity(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)

	require.NoError(t, d.Search(context.Background(), " Oslo "))

	s := d.Snapshot()
	require.NotNil(t, s.Current)
	assert.Equal(t, "Oslo", s.Current.Name)
	assert.Equal(t, 59.9, s.Coordinates.Lat)
	assert.Equal(t, 1, gw.calls["city"])
	assert.Equal(t, 1, gw.calls["current"])
}

func TestSearchCityNotFoundKeepsPreviousData(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(context.Background(), "Lisbon"))
	before := d.Snapshot()

	err := d.Search(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrCityNotFound)

	s := d.Snapshot()
	assert.False(t, s.Loading)
	assert.Equal(t, msgCityNotFound, s.Error)
	assert.Same(t, before.Current, s.Current)
	assert.Equal(t, "Lisbon", s.Current.Name)

	require.Len(t, s.Notifications, 1)
	assert.Equal(t, "City Not Found", s.Notifications[0].Title)
	assert.Equal(t, "destructive", s.Notifications[0].Variant)
}

func TestSearchBlankIsNoop(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)

	require.NoError(t, d.Search(context.Background(), "   "))
	assert.Equal(t, 0, gw.calls["city"])
	assert.True(t, d.Snapshot().Loading)
}

func TestSuccessClearsPreviousError(t *testing.T) {
	d := newTestDashboard(newFakeGateway())
	require.Error(t, d.Search(context.Background(), "Atlantis"))
	require.NoError(t, d.Search(context.Background(), "Lisbon"))

	assert.Empty(t, d.Snapshot().Error)
}

func TestGeolocate(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		d := newTestDashboard(newFakeGateway())
		err := d.Geolocate(context.Background(), nil)
		assert.ErrorIs(t, err, weather.ErrGeolocationUnavailable)

		s := d.Snapshot()
		assert.False(t, s.Loading)
		assert.Equal(t, msgGeolocationUnsupported, s.Error)
		assert.Nil(t, s.Current)
	})

	t.Run("denied", func(t *testing.T) {
		d := newTestDashboard(newFakeGateway())
		err := d.Geolocate(context.Background(), failingLocator{})
		assert.ErrorIs(t, err, weather.ErrGeolocationUnavailable)
		assert.Equal(t, msgGeolocationFailed, d.Snapshot().Error)
	})

	t.Run("resolved", func(t *testing.T) {
		d := newTestDashboard(newFakeGateway())
		require.NoError(t, d.Geolocate(context.Background(), weather.FixedPosition{Lat: 59.9, Lon: 10.7}))
		assert.Equal(t, "Oslo", d.Snapshot().Current.Name)
	})
}

type failingLocator struct{}

func (failingLocator) Locate(context.Context) (weather.Coordinates, error) {
	return weather.Coordinates{}, errors.New("permission denied")
}

func TestStaleFanOutIsDropped(t *testing.T) {
	gw := newFakeGateway()
	release := make(chan struct{})
	gw.block[38.7] = release
	d := newTestDashboard(gw)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- d.Locate(context.Background(), weather.Coordinates{Lat: 38.7})
	}()

	// Wait until the slow fan-out is in flight.
	require.Eventually(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.calls["current"] == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, d.Search(context.Background(), "Oslo"))
	close(release)

	assert.ErrorIs(t, <-slowErr, ErrSuperseded)

	s := d.Snapshot()
	assert.Equal(t, "Oslo", s.Current.Name)
	assert.Equal(t, 59.9, s.Coordinates.Lat)
	assert.False(t, s.Loading)
}

func TestRefresh(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)

	assert.ErrorIs(t, d.Refresh(context.Background()), ErrNotLocated)

	require.NoError(t, d.Search(context.Background(), "Lisbon"))
	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 2, gw.calls["current"])
	assert.Equal(t, 1, gw.calls["city"])
}

func TestRefreshDoesNotSupersedeSearchInFlight(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Locate(context.Background(), weather.Coordinates{Lat: 38.7}))

	release := make(chan struct{})
	gw.mu.Lock()
	gw.block[59.9] = release
	gw.mu.Unlock()

	searchErr := make(chan error, 1)
	go func() {
		searchErr <- d.Search(context.Background(), "oslo")
	}()

	require.Eventually(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.calls["current"] == 2
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, d.Refresh(context.Background()), ErrBusy)
	close(release)

	require.NoError(t, <-searchErr)
	s := d.Snapshot()
	assert.Equal(t, "Oslo", s.Current.Name)
	assert.False(t, s.Loading)
	assert.Equal(t, 2, gw.calls["current"], "refresh issued no fetch")

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, "Oslo", d.Snapshot().Current.Name)
}

func TestTogglesDoNotMutateRecords(t *testing.T) {
	d := newTestDashboard(newFakeGateway())
	require.NoError(t, d.Search(context.Background(), "Lisbon"))
	before := d.Snapshot()

	assert.Equal(t, weather.Fahrenheit, d.ToggleUnit())
	assert.Equal(t, weather.ThemeLight, d.ToggleTheme())

	after := d.Snapshot()
	assert.Equal(t, *before.Current, *after.Current)
	assert.Equal(t, before.Forecast, after.Forecast)
	assert.Equal(t, before.Nearby, after.Nearby)

	assert.Equal(t, weather.Celsius, d.ToggleUnit())
	assert.Equal(t, weather.ThemeDark, d.ToggleTheme())
}

func TestNotificationsAreCapped(t *testing.T) {
	d := newTestDashboard(newFakeGateway())
	for i := 0; i < maxNotifications+5; i++ {
		_ = d.Search(context.Background(), "Atlantis")
	}
	assert.Len(t, d.Snapshot().Notifications, maxNotifications)
}
