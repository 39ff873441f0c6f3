package models

// Responses for predictor HTTP endpoints. Dates are YYYY-MM-DD.

type TrainResponse struct {
	Model   ModelInfo `json:"model"`
	Metrics Metrics   `json:"metrics"`
}

type PredictionResponse struct {
	Ticker  string  `json:"ticker"`
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
	Actual  bool    `json:"actual"`
	ModelID string  `json:"model_id,omitempty"`
}

type ForecastPointResponse struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ForecastResponse carries a possibly partial forecast; Error is set when the
// sequence stopped early.
type ForecastResponse struct {
	Ticker  string                  `json:"ticker"`
	ModelID string                  `json:"model_id"`
	Horizon int                     `json:"horizon"`
	Points  []ForecastPointResponse `json:"points"`
	Partial bool                    `json:"partial,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelID      string `json:"model_id,omitempty"`
	Observations int    `json:"observations"`
}
