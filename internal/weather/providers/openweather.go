package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherGateway implements weather.Gateway against OpenWeatherMap.
// Every endpoint has its own circuit breaker so one failing endpoint does
// not block the others.
type OpenWeatherGateway struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	breakers map[string]*gobreaker.CircuitBreaker
}

var _ weather.Gateway = (*OpenWeatherGateway)(nil)

func NewOpenWeatherGateway(client *http.Client, apiKey, baseURL string) *OpenWeatherGateway {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, ep := range []string{"weather", "forecast", "air_pollution", "find"} {
		breakers[ep] = newBreaker("openweather-" + ep)
	}

	return &OpenWeatherGateway{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCfg:  HTTPClientConfig{Client: client},
		breakers: breakers,
	}
}

func (p *OpenWeatherGateway) Name() string {
	return p.name
}

func (p *OpenWeatherGateway) CurrentByCoordinates(ctx context.Context, c weather.Coordinates) (weather.CurrentConditions, error) {
	var payload owmCurrent
	if err := p.get(ctx, "weather", coordValues(c, true), &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	return payload.toConditions(), nil
}

func (p *OpenWeatherGateway) CurrentByCityName(ctx context.Context, name string) (weather.CurrentConditions, error) {
	values := url.Values{}
	values.Set("q", strings.TrimSpace(name))
	values.Set("units", "metric")

	var payload owmCurrent
	if err := p.get(ctx, "weather", values, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	return payload.toConditions(), nil
}

func (p *OpenWeatherGateway) Forecast(ctx context.Context, c weather.Coordinates) ([]weather.ForecastEntry, error) {
	var payload struct {
		List []struct {
			Dt   int64   `json:"dt"`
			Main owmMain `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
				Deg   int     `json:"deg"`
			} `json:"wind"`
			Weather []owmWeather `json:"weather"`
		} `json:"list"`
	}
	if err := p.get(ctx, "forecast", coordValues(c, true), &payload); err != nil {
		return nil, err
	}

	entries := make([]weather.ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entries = append(entries, weather.ForecastEntry{
			Timestamp:  item.Dt,
			TempC:      item.Main.Temp,
			TempMinC:   item.Main.TempMin,
			TempMaxC:   item.Main.TempMax,
			FeelsLikeC: item.Main.FeelsLike,
			Humidity:   item.Main.Humidity,
			WindSpeed:  item.Wind.Speed,
			WindDeg:    item.Wind.Deg,
			Condition:  firstCondition(item.Weather),
		})
	}
	return entries, nil
}

func (p *OpenWeatherGateway) AirQuality(ctx context.Context, c weather.Coordinates) (weather.AirQualitySample, error) {
	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				NO   float64 `json:"no"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				SO2  float64 `json:"so2"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
				NH3  float64 `json:"nh3"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := p.get(ctx, "air_pollution", coordValues(c, false), &payload); err != nil {
		return weather.AirQualitySample{}, err
	}
	if len(payload.List) == 0 {
		return weather.AirQualitySample{}, fmt.Errorf("%w: empty air quality list", weather.ErrUnavailable)
	}

	r := payload.List[0]
	return weather.AirQualitySample{
		AQI:  r.Main.AQI,
		CO:   r.Components.CO,
		NO:   r.Components.NO,
		NO2:  r.Components.NO2,
		O3:   r.Components.O3,
		SO2:  r.Components.SO2,
		PM25: r.Components.PM25,
		PM10: r.Components.PM10,
		NH3:  r.Components.NH3,
	}, nil
}

func (p *OpenWeatherGateway) NearbyCities(ctx context.Context, c weather.Coordinates, count int) ([]weather.CurrentConditions, error) {
	values := coordValues(c, true)
	if count > 0 {
		values.Set("cnt", strconv.Itoa(count))
	}

	var payload struct {
		List []owmCurrent `json:"list"`
	}
	if err := p.get(ctx, "find", values, &payload); err != nil {
		return nil, err
	}

	cities := make([]weather.CurrentConditions, 0, len(payload.List))
	for _, item := range payload.List {
		cities = append(cities, item.toConditions())
	}
	return cities, nil
}

// get performs one GET against endpoint and decodes the JSON body into out.
func (p *OpenWeatherGateway) get(ctx context.Context, endpoint string, values url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	cb := p.breakers[endpoint]
	if cb == nil {
		cb = newBreaker("openweather-" + endpoint)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, cb, buildRequest)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", weather.ErrUnavailable, endpoint, err)
	}
	if err := classifyStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: failed to parse response: %w", weather.ErrUnavailable, endpoint, err)
	}
	return nil
}

func coordValues(c weather.Coordinates, metric bool) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	if metric {
		values.Set("units", "metric")
	}
	return values
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmWeather struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrent struct {
	Name    string       `json:"name"`
	Main    owmMain      `json:"main"`
	Weather []owmWeather `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

func (c owmCurrent) toConditions() weather.CurrentConditions {
	return weather.CurrentConditions{
		Name:        c.Name,
		Country:     c.Sys.Country,
		TempC:       c.Main.Temp,
		FeelsLikeC:  c.Main.FeelsLike,
		TempMinC:    c.Main.TempMin,
		TempMaxC:    c.Main.TempMax,
		Humidity:    c.Main.Humidity,
		Pressure:    c.Main.Pressure,
		WindSpeed:   c.Wind.Speed,
		WindDeg:     c.Wind.Deg,
		Condition:   firstCondition(c.Weather),
		Sunrise:     c.Sys.Sunrise,
		Sunset:      c.Sys.Sunset,
		Coordinates: weather.Coordinates{Lat: c.Coord.Lat, Lon: c.Coord.Lon},
	}
}

func firstCondition(items []owmWeather) weather.Condition {
	if len(items) == 0 {
		return weather.Condition{}
	}
	w := items[0]
	return weather.Condition{
		ID:          w.ID,
		Main:        w.Main,
		Description: w.Description,
		Icon:        w.Icon,
	}
}
