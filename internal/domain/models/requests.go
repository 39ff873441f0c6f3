package models

// Requests for predictor HTTP endpoints.

type TrainRequest struct {
	Tickers      []string `json:"tickers" validate:"omitempty,max=500,dive,required,ticker"`
	TestFraction float64  `json:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
	Seed         int64    `json:"seed" default:"42"`
}

type PredictRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,ticker"`
	Date   string `query:"date" json:"date" validate:"required,date"`
}

type ForecastRequest struct {
	Ticker  string `query:"ticker" json:"ticker" validate:"required,ticker"`
	Horizon int    `query:"horizon" json:"horizon" default:"30" validate:"gte=1,lte=365"`
}
