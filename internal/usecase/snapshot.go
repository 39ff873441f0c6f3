package usecase

import (
	"time"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/internal/services/features"
)

// TrainedModel is an immutable snapshot produced by one training run. The schema
// it carries is the only column contract used at inference.
type TrainedModel struct {
	ID        string
	TrainedAt time.Time
	Schema    *features.Schema
	Scaler    domsvc.Transformer
	Regressor domsvc.Regressor
	Metrics   models.Metrics
	Params    TrainParams
	Trees     int
	Skipped   []string
}

// predict conforms a raw feature row, scales it and runs the regressor.
func (m *TrainedModel) predict(row map[string]float64) float64 {
	return m.Regressor.Predict(m.Scaler.Transform(m.Schema.Conform(row)))
}

func (m *TrainedModel) Info() models.ModelInfo {
	return models.ModelInfo{
		ID:             m.ID,
		TrainedAt:      m.TrainedAt,
		SchemaVersion:  m.Schema.Version(),
		Columns:        m.Schema.Len(),
		PredictionDays: m.Schema.PredictionDays(),
		Tickers:        m.Schema.Tickers(),
		Sectors:        m.Schema.Sectors(),
		Trees:          m.Trees,
		Metrics:        m.Metrics,
	}
}
