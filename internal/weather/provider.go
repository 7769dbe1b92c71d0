package weather

import (
	"context"
)

// Gateway abstracts the upstream weather source (e.g. OpenWeatherMap).
// All temperatures are requested in metric units; conversion is local.
type Gateway interface {
	CurrentByCoordinates(ctx context.Context, c Coordinates) (CurrentConditions, error)
	CurrentByCityName(ctx context.Context, name string) (CurrentConditions, error)
	Forecast(ctx context.Context, c Coordinates) ([]ForecastEntry, error)
	AirQuality(ctx context.Context, c Coordinates) (AirQualitySample, error)
	NearbyCities(ctx context.Context, c Coordinates, count int) ([]CurrentConditions, error)
}

// Locator supplies the viewer's position or fails with ErrGeolocationUnavailable.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}
