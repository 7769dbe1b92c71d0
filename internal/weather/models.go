package weather

import (
	"fmt"
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Condition is the upstream weather condition attached to a reading.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentConditions is an immutable snapshot of the weather at one place.
// Temperatures are always Celsius.
type CurrentConditions struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	TempC       float64     `json:"tempC"`
	FeelsLikeC  float64     `json:"feelsLikeC"`
	TempMinC    float64     `json:"tempMinC"`
	TempMaxC    float64     `json:"tempMaxC"`
	Humidity    float64     `json:"humidityPercent"`
	Pressure    float64     `json:"pressureHpa"`
	WindSpeed   float64     `json:"windSpeed"`
	WindDeg     int         `json:"windDeg"`
	Condition   Condition   `json:"condition"`
	Sunrise     int64       `json:"sunrise"` // epoch seconds
	Sunset      int64       `json:"sunset"`  // epoch seconds
	Coordinates Coordinates `json:"coordinates"`
}

// ForecastEntry is one 3-hour forecast sample.
type ForecastEntry struct {
	Timestamp  int64     `json:"dt"` // epoch seconds
	TempC      float64   `json:"tempC"`
	TempMinC   float64   `json:"tempMinC"`
	TempMaxC   float64   `json:"tempMaxC"`
	FeelsLikeC float64   `json:"feelsLikeC"`
	Humidity   float64   `json:"humidityPercent"`
	WindSpeed  float64   `json:"windSpeed"`
	WindDeg    int       `json:"windDeg"`
	Condition  Condition `json:"condition"`
}

// Time returns the sample time in loc (UTC when loc is nil).
func (e ForecastEntry) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(e.Timestamp, 0).In(loc)
}

// DailyForecast folds all samples of one local calendar day.
type DailyForecast struct {
	Key         string    `json:"key"` // YYYY-MM-DD in the viewer's location
	Date        time.Time `json:"date"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	TempMaxC    float64   `json:"tempMaxC"`
	TempMinC    float64   `json:"tempMinC"`
	Samples     int       `json:"samples"`
}

// AirQualitySample is a single air pollution reading.
// Concentrations are in µg/m³.
type AirQualitySample struct {
	AQI  int     `json:"aqi"` // 1 (good) .. 5 (very poor)
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// Theme is the presentational colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle flips between dark and light.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
