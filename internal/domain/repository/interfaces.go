package repository

import (
	"context"
	"time"

	"PriceCast/internal/domain/models"
)

// SeriesStore provides read-only, ticker-sorted access to loaded observations.
type SeriesStore interface {
	Tickers() []string
	// Series returns the ticker's observations in ascending date order.
	Series(ticker string) ([]models.PriceObservation, bool)
	// Recent returns up to n most recent observations, newest first.
	Recent(ticker string, n int) []models.PriceObservation
	Lookup(ticker string, date time.Time) (models.PriceObservation, bool)
	Latest(ticker string) (models.PriceObservation, bool)
	Len() int
}

// ObservationSource loads the raw observation table.
type ObservationSource interface {
	Load(ctx context.Context) ([]models.PriceObservation, error)
}

// EventPublisher emits model lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishModelTrained(ctx context.Context, ev models.ModelTrainedEvent) error
	PublishForecast(ctx context.Context, ev models.ForecastEvent) error
	Close() error
}

type Metrics interface {
	RecordTraining(rows, skipped int, seconds float64, m models.Metrics)
	RecordPrediction(ticker, kind string, seconds float64)
	RecordError(kind string)
}
