package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrFetchFailed is returned when any call of a fan-out fails.
	ErrFetchFailed = errors.New("failed to fetch weather data")
	// ErrSuperseded is returned when a newer action started before this one finished.
	// Its results were dropped.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNotLocated is returned by Refresh before any location was committed.
	ErrNotLocated = errors.New("dashboard has no location yet")
	// ErrBusy is returned by Refresh while another action is still loading.
	ErrBusy = errors.New("another request is in flight")
)

const (
	msgGeolocationUnsupported = "Geolocation is not supported. Please search for a city."
	msgGeolocationFailed      = "Failed to get your location. Please search for a city."
	msgFetchFailed            = "Failed to fetch weather data. Please try again later."
	msgCityNotFound           = "City not found. Please try another city."

	maxNotifications = 20
)

// Notification is a user-visible toast raised by a failed action.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	At          time.Time `json:"at"`
}

// Options configures a Dashboard.
type Options struct {
	NearbyCount  int
	ForecastDays int
	ExcludeToday bool
	Timezone     *time.Location
	Unit         weather.Unit
	Theme        weather.Theme
}

// State is a copy of everything a dashboard holds. Nil records mean the
// data has not arrived yet, which renders as loading.
type State struct {
	Current       *weather.CurrentConditions
	Forecast      []weather.ForecastEntry
	AirQuality    *weather.AirQualitySample
	Nearby        []weather.CurrentConditions
	Coordinates   *weather.Coordinates
	Unit          weather.Unit
	Theme         weather.Theme
	Timezone      *time.Location
	Loading       bool
	Error         string
	UpdatedAt     time.Time
	Notifications []Notification
}

// Dashboard owns the fetched records and preferences of one viewer. It is
// the only writer of its state. Every fetch action is tagged with a request
// id and only the most recent one may commit.
type Dashboard struct {
	gateway weather.Gateway
	opts    Options

	mu    sync.Mutex
	seq   uint64
	state State
}

// New creates a dashboard in the initial loading state.
func New(gateway weather.Gateway, opts Options) *Dashboard {
	if opts.Unit == "" {
		opts.Unit = weather.Celsius
	}
	if opts.Theme == "" {
		opts.Theme = weather.ThemeDark
	}
	if opts.Timezone == nil {
		opts.Timezone = time.Local
	}
	if opts.NearbyCount <= 0 {
		opts.NearbyCount = 4
	}

	return &Dashboard{
		gateway: gateway,
		opts:    opts,
		state: State{
			Unit:     opts.Unit,
			Theme:    opts.Theme,
			Timezone: opts.Timezone,
			Loading:  true,
		},
	}
}

// Geolocate resolves the viewer's position and loads the dashboard there.
// A nil locator means geolocation is not supported; the viewer must search.
func (d *Dashboard) Geolocate(ctx context.Context, locator weather.Locator) error {
	id := d.begin()

	if locator == nil {
		d.fail(id, msgGeolocationUnsupported, nil)
		return weather.ErrGeolocationUnavailable
	}

	coords, err := locator.Locate(ctx)
	if err != nil {
		log.Printf("ERROR: geolocation failed: %v", err)
		if !d.fail(id, msgGeolocationFailed, nil) {
			return ErrSuperseded
		}
		if errors.Is(err, weather.ErrGeolocationUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", weather.ErrGeolocationUnavailable, err)
	}

	return d.fanOut(ctx, id, coords)
}

// Locate loads current conditions, forecast, air quality and nearby cities
// for c. Either all four records are committed or none is.
func (d *Dashboard) Locate(ctx context.Context, c weather.Coordinates) error {
	return d.fanOut(ctx, d.begin(), c)
}

// Search looks up a city by name and loads the dashboard at its coordinates.
// A blank name is ignored. When the city is unknown the previous data stays.
func (d *Dashboard) Search(ctx context.Context, city string) error {
	if common.Blank(city) {
		return nil
	}

	id := d.begin()

	cur, err := d.gateway.CurrentByCityName(ctx, city)
	if err != nil {
		log.Printf("ERROR: search for %q failed: %v", city, err)

		msg, note := msgFetchFailed, notification("Error", msgFetchFailed)
		if errors.Is(err, weather.ErrCityNotFound) {
			msg, note = msgCityNotFound, notification("City Not Found", "Please try another city name.")
		}
		if !d.fail(id, msg, &note) {
			return ErrSuperseded
		}
		return fmt.Errorf("search %q: %w", city, err)
	}

	return d.fanOut(ctx, id, cur.Coordinates)
}

// Refresh re-runs the fan-out at the last committed coordinates. It never
// supersedes an action that is still loading; it returns ErrBusy instead.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	coords := d.state.Coordinates
	if coords == nil {
		d.mu.Unlock()
		return ErrNotLocated
	}
	if d.state.Loading {
		d.mu.Unlock()
		return ErrBusy
	}
	id := d.beginLocked()
	d.mu.Unlock()

	return d.fanOut(ctx, id, *coords)
}

func (d *Dashboard) fanOut(ctx context.Context, id uint64, c weather.Coordinates) error {
	log.Printf("DEBUG: fan-out #%d for %s", id, c)

	var (
		current    weather.CurrentConditions
		forecast   []weather.ForecastEntry
		airQuality weather.AirQualitySample
		nearby     []weather.CurrentConditions
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = d.gateway.CurrentByCoordinates(gctx, c)
		return err
	})
	g.Go(func() (err error) {
		forecast, err = d.gateway.Forecast(gctx, c)
		return err
	})
	g.Go(func() (err error) {
		airQuality, err = d.gateway.AirQuality(gctx, c)
		return err
	})
	g.Go(func() (err error) {
		nearby, err = d.gateway.NearbyCities(gctx, c, d.opts.NearbyCount)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Printf("ERROR: fan-out #%d for %s failed: %v", id, c, err)
		note := notification("Error", msgFetchFailed)
		if !d.fail(id, msgFetchFailed, &note) {
			return ErrSuperseded
		}
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if forecast == nil {
		forecast = []weather.ForecastEntry{}
	}
	if nearby == nil {
		nearby = []weather.CurrentConditions{}
	}

	committed := d.finish(id, func(s *State) {
		s.Current = &current
		s.Forecast = forecast
		s.AirQuality = &airQuality
		s.Nearby = nearby
		s.Coordinates = &c
		s.UpdatedAt = time.Now().UTC()
	})
	if !committed {
		log.Printf("INFO: dropping stale fan-out #%d for %s", id, c)
		return ErrSuperseded
	}
	return nil
}

// begin issues a new request id and enters the loading state.
func (d *Dashboard) begin() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.beginLocked()
}

func (d *Dashboard) beginLocked() uint64 {
	d.seq++
	d.state.Loading = true
	d.state.Error = ""
	return d.seq
}

// finish applies fn and clears loading, but only if id is still the latest request.
func (d *Dashboard) finish(id uint64, fn func(s *State)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id != d.seq {
		return false
	}
	fn(&d.state)
	d.state.Loading = false
	return true
}

// fail records msg as the current error without touching fetched records.
func (d *Dashboard) fail(id uint64, msg string, note *Notification) bool {
	return d.finish(id, func(s *State) {
		s.Error = msg
		if note != nil {
			s.Notifications = append(s.Notifications, *note)
			if len(s.Notifications) > maxNotifications {
				s.Notifications = s.Notifications[len(s.Notifications)-maxNotifications:]
			}
		}
	})
}

func notification(title, description string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     "destructive",
		At:          time.Now().UTC(),
	}
}

// ToggleUnit flips between Celsius and Fahrenheit. Stored values are untouched.
func (d *Dashboard) ToggleUnit() weather.Unit {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.Unit = d.state.Unit.Toggle()
	return d.state.Unit
}

func (d *Dashboard) SetUnit(u weather.Unit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Unit = u
}

// ToggleTheme flips between dark and light.
func (d *Dashboard) ToggleTheme() weather.Theme {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.Theme = d.state.Theme.Toggle()
	return d.state.Theme
}

func (d *Dashboard) SetTheme(t weather.Theme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Theme = t
}

// SetTimezone changes the location used for day bucketing and clock times.
func (d *Dashboard) SetTimezone(loc *time.Location) {
	if loc == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Timezone = loc
}

// Located reports whether a fan-out has committed coordinates.
func (d *Dashboard) Located() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Coordinates != nil
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	// Records are replaced wholesale, never mutated, so sharing pointers is
	// safe; slices are copied so an empty slice stays distinct from nil.
	if s.Forecast != nil {
		s.Forecast = make([]weather.ForecastEntry, len(d.state.Forecast))
		copy(s.Forecast, d.state.Forecast)
	}
	if s.Nearby != nil {
		s.Nearby = make([]weather.CurrentConditions, len(d.state.Nearby))
		copy(s.Nearby, d.state.Nearby)
	}
	s.Notifications = append([]Notification(nil), s.Notifications...)
	return s
}
