package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string `validate:"required,url"`
	GeocoderAPIKey     string

	// HTTPTimeout bounds every outbound upstream call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Dashboard rendering.
	NearbyCount     int  `validate:"min=1,max=50"`
	ForecastDays    int  `validate:"min=1,max=6"`
	ExcludeToday    bool
	DefaultTimezone *time.Location `validate:"required"`
	DefaultUnit     weather.Unit   `validate:"oneof=celsius fahrenheit"`
	DefaultTheme    weather.Theme  `validate:"oneof=dark light"`

	// RefreshInterval re-fetches located dashboards (0 = disabled).
	RefreshInterval time.Duration `validate:"gte=0"`

	// Session retention.
	SessionMax     int           `validate:"gte=0"` // 0 = unlimited
	SessionMaxIdle time.Duration `validate:"gte=0"` // 0 = unlimited

	CORSAllowOrigins string
	Port             string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.NearbyCount = getenvInt("NEARBY_CITIES_COUNT", 4)
	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 5)
	cfg.ExcludeToday = getenvBool("FORECAST_EXCLUDE_TODAY", false)

	tz := getenvDefault("DEFAULT_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	cfg.DefaultTimezone = loc

	if cfg.DefaultUnit, err = weather.ParseUnit(getenvDefault("DEFAULT_UNIT", "celsius")); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNIT: %w", err)
	}
	if cfg.DefaultTheme, err = weather.ParseTheme(getenvDefault("DEFAULT_THEME", "dark")); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_THEME: %w", err)
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.SessionMax = getenvInt("SESSION_MAX", 1000)
	if cfg.SessionMaxIdle, err = getenvDuration("SESSION_MAX_IDLE", "24h"); err != nil {
		return nil, err
	}

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.OpenWeatherAPIKey == "" {
		log.Println("INFO: OPENWEATHER_API_KEY is not set; every fetch will fail")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
