package models

import "time"

// Metrics holds hold-out accuracy of a trained model.
type Metrics struct {
	MAE       float64 `json:"mae"`
	MSE       float64 `json:"mse"`
	RMSE      float64 `json:"rmse"`
	R2        float64 `json:"r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// Prediction is the result of a single price request.
// Actual is true when the price was looked up from history instead of inferred.
type Prediction struct {
	Ticker  string    `json:"ticker"`
	Date    time.Time `json:"date"`
	Price   float64   `json:"price"`
	Actual  bool      `json:"actual"`
	ModelID string    `json:"model_id,omitempty"`
}

// ForecastPoint is one element of a forecast sequence.
type ForecastPoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Actual bool      `json:"actual"`
}

// ModelInfo describes the currently served model snapshot.
type ModelInfo struct {
	ID             string    `json:"id"`
	TrainedAt      time.Time `json:"trained_at"`
	SchemaVersion  string    `json:"schema_version"`
	Columns        int       `json:"columns"`
	PredictionDays int       `json:"prediction_days"`
	Tickers        []string  `json:"tickers"`
	Sectors        []string  `json:"sectors"`
	Trees          int       `json:"trees"`
	Metrics        Metrics   `json:"metrics"`
}

// ModelTrainedEvent is published after a snapshot replaced the previous model.
type ModelTrainedEvent struct {
	ModelID       string    `json:"model_id"`
	SchemaVersion string    `json:"schema_version"`
	TrainedAt     time.Time `json:"trained_at"`
	Tickers       []string  `json:"tickers"`
	Skipped       []string  `json:"skipped,omitempty"`
	Metrics       Metrics   `json:"metrics"`
}

// ForecastEvent is published after a forecast sequence was produced.
type ForecastEvent struct {
	ModelID string          `json:"model_id"`
	Ticker  string          `json:"ticker"`
	Points  []ForecastPoint `json:"points"`
	Error   string          `json:"error,omitempty"`
}
