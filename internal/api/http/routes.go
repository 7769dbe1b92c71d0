package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/session"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// LocatorFactory builds a locator from an address hint.
type LocatorFactory func(city, country string) weather.Locator

// Deps groups what the handlers need.
type Deps struct {
	Sessions   *session.MemoryStore
	Gateway    weather.Gateway
	Options    dashboard.Options
	NewLocator LocatorFactory
	// FetchTimeout bounds a single action's upstream work.
	FetchTimeout time.Duration
	Now          func() time.Time
}

type handler struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = 30 * time.Second
	}
	h := &handler{Deps: deps}

	v1 := app.Group("/api/v1")

	v1.Post("/sessions", h.createSession)
	v1.Get("/sessions/:id", h.withDashboard(h.getView))
	v1.Delete("/sessions/:id", h.deleteSession)
	v1.Post("/sessions/:id/search", h.withDashboard(h.search))
	v1.Post("/sessions/:id/refresh", h.withDashboard(h.refresh))
	v1.Post("/sessions/:id/unit/toggle", h.withDashboard(func(c *fiber.Ctx, d *dashboard.Dashboard) error {
		d.ToggleUnit()
		return h.render(c, d)
	}))
	v1.Post("/sessions/:id/theme/toggle", h.withDashboard(func(c *fiber.Ctx, d *dashboard.Dashboard) error {
		d.ToggleTheme()
		return h.render(c, d)
	}))
	v1.Put("/sessions/:id/preferences", h.withDashboard(h.setPreferences))
}

// createRequest opens a dashboard. Coordinates win over an address hint;
// with neither, geolocation counts as unsupported.
type createRequest struct {
	Lat      *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon      *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
	City     string   `json:"city" validate:"max=128"`
	Country  string   `json:"country" validate:"max=64"`
	Timezone string   `json:"timezone" validate:"omitempty,timezone"`
	Unit     string   `json:"unit" validate:"omitempty,oneof=celsius fahrenheit"`
	Theme    string   `json:"theme" validate:"omitempty,oneof=dark light"`
}

func (r createRequest) locator(factory LocatorFactory) weather.Locator {
	switch {
	case r.Lat != nil && r.Lon != nil:
		return weather.FixedPosition{Lat: *r.Lat, Lon: *r.Lon}
	case (r.City != "" || r.Country != "") && factory != nil:
		return factory(r.City, r.Country)
	default:
		return nil
	}
}

func (h *handler) createSession(c *fiber.Ctx) error {
	var req createRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon must be given together")
	}

	d := dashboard.New(h.Gateway, h.Options)
	if err := applyPreferences(d, req.Unit, req.Theme, req.Timezone); err != nil {
		return err
	}
	id := h.Sessions.Create(d)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.FetchTimeout)
	defer cancel()

	// Geolocation and fetch failures are part of the dashboard state; the
	// session is usable either way.
	_ = d.Geolocate(ctx, req.locator(h.NewLocator))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   id,
		"view": d.View(h.Now()),
	})
}

func (h *handler) deleteSession(c *fiber.Ctx) error {
	if err := h.Sessions.Delete(c.Params("id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "unknown session")
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) getView(c *fiber.Ctx, d *dashboard.Dashboard) error {
	return h.render(c, d)
}

type searchRequest struct {
	City string `json:"city" validate:"required,max=128"`
}

func (h *handler) search(c *fiber.Ctx, d *dashboard.Dashboard) error {
	var req searchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.FetchTimeout)
	defer cancel()

	if err := d.Search(ctx, req.City); err != nil {
		return h.actionError(c, d, err)
	}
	return h.render(c, d)
}

func (h *handler) refresh(c *fiber.Ctx, d *dashboard.Dashboard) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.FetchTimeout)
	defer cancel()

	if err := d.Refresh(ctx); err != nil {
		return h.actionError(c, d, err)
	}
	return h.render(c, d)
}

type preferencesRequest struct {
	Unit     string `json:"unit" validate:"omitempty,oneof=celsius fahrenheit"`
	Theme    string `json:"theme" validate:"omitempty,oneof=dark light"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

func (h *handler) setPreferences(c *fiber.Ctx, d *dashboard.Dashboard) error {
	var req preferencesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := applyPreferences(d, req.Unit, req.Theme, req.Timezone); err != nil {
		return err
	}
	return h.render(c, d)
}

// actionError maps a failed dashboard action to a status code while still
// returning the current view, so the client can render the notification.
func (h *handler) actionError(c *fiber.Ctx, d *dashboard.Dashboard, err error) error {
	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		status = fiber.StatusConflict
	case errors.Is(err, dashboard.ErrNotLocated), errors.Is(err, dashboard.ErrBusy):
		status = fiber.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	case errors.Is(err, dashboard.ErrFetchFailed):
		// An upstream 404 inside the fan-out is still a fetch failure.
		status = fiber.StatusBadGateway
	case errors.Is(err, weather.ErrCityNotFound):
		status = fiber.StatusNotFound
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
		"view":    d.View(h.Now()),
	})
}

func (h *handler) render(c *fiber.Ctx, d *dashboard.Dashboard) error {
	return c.JSON(d.View(h.Now()))
}

func (h *handler) withDashboard(fn func(*fiber.Ctx, *dashboard.Dashboard) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := h.Sessions.Get(c.Params("id"))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unknown session")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
		}
		return fn(c, d)
	}
}

func applyPreferences(d *dashboard.Dashboard, unit, theme, timezone string) error {
	if unit != "" {
		u, err := weather.ParseUnit(unit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d.SetUnit(u)
	}
	if theme != "" {
		t, err := weather.ParseTheme(theme)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d.SetTheme(t)
	}
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid timezone")
		}
		d.SetTimezone(loc)
	}
	return nil
}

func bindAndValidate(c *fiber.Ctx, out any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
