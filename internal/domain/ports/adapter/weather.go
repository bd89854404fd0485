package adapter

import (
	"context"

	"notion-reminder-service/internal/domain/model"
)

// StationReading is one station's incremental rainfall value (mm) from a
// single provider poll.
type StationReading struct {
	StationID string
	Value     float64
}

// RainfallObservations is the provider's current rainfall payload: the full
// station directory plus one batch of readings stamped with the provider's
// own timestamp (ISO-8601 with offset, surfaced verbatim for the
// slot-consistency check).
type RainfallObservations struct {
	Stations  []*model.RainfallStation
	Timestamp string
	Readings  []StationReading
}

// WeatherProvider is the upstream real-time weather API.
type WeatherProvider interface {
	FetchRainfall(ctx context.Context) (*RainfallObservations, error)
	FetchTwoHourForecast(ctx context.Context) (*model.ForecastWindow, error)
}
