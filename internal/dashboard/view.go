package dashboard

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const iconBaseURL = "https://openweathermap.org/img/wn/"

// View is the render-ready dashboard. Every temperature is already in the
// selected unit and rounded. Nil cards are still loading.
type View struct {
	Unit          weather.Unit     `json:"unit"`
	UnitSymbol    string           `json:"unitSymbol"`
	Theme         weather.Theme    `json:"theme"`
	Timezone      string           `json:"timezone"`
	Date          string           `json:"date"`
	Loading       bool             `json:"loading"`
	Error         string           `json:"error,omitempty"`
	Current       *CurrentCard     `json:"current"`
	Weekly        *WeeklyCard      `json:"weekly"`
	AirQuality    *AirQualityGauge `json:"airQuality"`
	Nearby        []NearbyTile     `json:"nearby"`
	Notifications []Notification   `json:"notifications"`
	UpdatedAt     *time.Time       `json:"updatedAt,omitempty"`
}

type CurrentCard struct {
	Location    string              `json:"location"`
	Country     string              `json:"country"`
	Temp        int                 `json:"temp"`
	FeelsLike   int                 `json:"feelsLike"`
	High        int                 `json:"high"`
	Low         int                 `json:"low"`
	Description string              `json:"description"`
	IconURL     string              `json:"iconUrl"`
	Humidity    float64             `json:"humidityPercent"`
	Pressure    float64             `json:"pressureHpa"`
	WindSpeed   float64             `json:"windSpeed"`
	WindDeg     int                 `json:"windDeg"`
	Coordinates weather.Coordinates `json:"coordinates"`
}

type WeeklyCard struct {
	Days     []DayTile                `json:"days"`
	Sunrise  string                   `json:"sunrise"`
	Sunset   string                   `json:"sunset"`
	Daylight weather.DaylightDuration `json:"daylight"`
	// DaylightText is empty when sunrise/sunset are inverted.
	DaylightText string `json:"daylightText"`
}

type DayTile struct {
	Key         string `json:"key"`
	Weekday     string `json:"weekday"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	High        int    `json:"high"`
	Low         int    `json:"low"`
}

type AirQualityGauge struct {
	AQI      int     `json:"aqi"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Rotation float64 `json:"rotationDeg"`
	PM25     float64 `json:"pm2_5"`
	PM10     float64 `json:"pm10"`
	O3       float64 `json:"o3"`
	NO2      float64 `json:"no2"`
	CO       float64 `json:"co"`
	SO2      float64 `json:"so2"`
	NH3      float64 `json:"nh3"`
	NO       float64 `json:"no"`
}

type NearbyTile struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Temp        int    `json:"temp"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

// View derives the render model at now.
func (d *Dashboard) View(now time.Time) View {
	return d.opts.render(d.Snapshot(), now)
}

func (o Options) render(s State, now time.Time) View {
	loc := s.Timezone
	if loc == nil {
		loc = time.UTC
	}
	u := s.Unit

	v := View{
		Unit:          u,
		UnitSymbol:    u.Symbol(),
		Theme:         s.Theme,
		Timezone:      loc.String(),
		Date:          weather.FormatCalendarDate(now.In(loc)),
		Loading:       s.Loading,
		Error:         s.Error,
		Notifications: s.Notifications,
	}
	if !s.UpdatedAt.IsZero() {
		at := s.UpdatedAt
		v.UpdatedAt = &at
	}

	if c := s.Current; c != nil {
		v.Current = &CurrentCard{
			Location:    c.Name,
			Country:     c.Country,
			Temp:        u.Display(c.TempC),
			FeelsLike:   u.Display(c.FeelsLikeC),
			High:        u.Display(c.TempMaxC),
			Low:         u.Display(c.TempMinC),
			Description: c.Condition.Description,
			IconURL:     iconURL(c.Condition.Icon, true),
			Humidity:    c.Humidity,
			Pressure:    c.Pressure,
			WindSpeed:   c.WindSpeed,
			WindDeg:     c.WindDeg,
			Coordinates: c.Coordinates,
		}
	}

	// The weekly card shows sunrise and sunset, so it needs both records.
	if s.Forecast != nil && s.Current != nil {
		opts := weather.AggregateOptions{Location: loc, Limit: o.ForecastDays}
		if o.ExcludeToday {
			opts.ExcludeDay = weather.TodayKey(now, loc)
		}

		days := weather.AggregateDaily(s.Forecast, opts)
		tiles := make([]DayTile, 0, len(days))
		for _, day := range days {
			tiles = append(tiles, DayTile{
				Key:         day.Key,
				Weekday:     weather.FormatWeekday(day.Date),
				Description: day.Description,
				IconURL:     iconURL(day.Icon, false),
				High:        u.Display(day.TempMaxC),
				Low:         u.Display(day.TempMinC),
			})
		}

		daylight := weather.ComputeDaylightDuration(s.Current.Sunrise, s.Current.Sunset)
		weekly := &WeeklyCard{
			Days:     tiles,
			Sunrise:  weather.FormatClockTime(s.Current.Sunrise, loc),
			Sunset:   weather.FormatClockTime(s.Current.Sunset, loc),
			Daylight: daylight,
		}
		if s.Current.Sunset >= s.Current.Sunrise {
			weekly.DaylightText = daylight.String()
		}
		v.Weekly = weekly
	}

	if aq := s.AirQuality; aq != nil {
		v.AirQuality = &AirQualityGauge{
			AQI:      aq.AQI,
			Label:    weather.AQILabel(aq.AQI),
			Color:    weather.AQIColor(aq.AQI),
			Rotation: weather.AQIGaugeRotation(aq.AQI),
			PM25:     aq.PM25,
			PM10:     aq.PM10,
			O3:       aq.O3,
			NO2:      aq.NO2,
			CO:       aq.CO,
			SO2:      aq.SO2,
			NH3:      aq.NH3,
			NO:       aq.NO,
		}
	}

	if s.Nearby != nil {
		n := len(s.Nearby)
		if o.NearbyCount > 0 && n > o.NearbyCount {
			n = o.NearbyCount
		}
		v.Nearby = make([]NearbyTile, 0, n)
		for _, city := range s.Nearby[:n] {
			v.Nearby = append(v.Nearby, NearbyTile{
				Name:        city.Name,
				Country:     city.Country,
				Temp:        u.Display(city.TempC),
				Description: city.Condition.Description,
				IconURL:     iconURL(city.Condition.Icon, false),
			})
		}
	}

	return v
}

func iconURL(icon string, large bool) string {
	if icon == "" {
		return ""
	}
	if large {
		return fmt.Sprintf("%s%s@2x.png", iconBaseURL, icon)
	}
	return fmt.Sprintf("%s%s.png", iconBaseURL, icon)
}
