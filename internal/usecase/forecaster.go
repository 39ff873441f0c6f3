package usecase

import (
	"fmt"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/internal/services/features"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/util"
)

// Forecaster answers price queries against a model snapshot: stored closes for
// historical dates, inferred closes past the last observation.
type Forecaster struct {
	store domrepo.SeriesStore
	l     *applogger.Logger
}

func NewForecaster(store domrepo.SeriesStore) *Forecaster {
	return &Forecaster{store: store}
}

func (f *Forecaster) SetLogger(l *applogger.Logger) { f.l = l }

// PredictPrice returns the close of ticker on date. Inference always uses the most
// recent stored window, so every future date yields the same next-day estimate.
func (f *Forecaster) PredictPrice(m *TrainedModel, ticker string, date time.Time) (models.Prediction, error) {
	if m == nil {
		return models.Prediction{}, &models.ModelNotTrainedError{}
	}
	if !m.Schema.HasTicker(ticker) {
		return models.Prediction{}, &models.UnknownTickerError{Ticker: ticker}
	}
	day := models.TruncateDay(date)
	pd := m.Schema.PredictionDays()

	if latest, ok := f.store.Latest(ticker); ok && !day.After(latest.Date) {
		o, found := f.store.Lookup(ticker, day)
		if !found {
			return models.Prediction{}, &models.NoObservationError{Ticker: ticker, Date: day}
		}
		return models.Prediction{Ticker: ticker, Date: day, Price: o.Close, Actual: true, ModelID: m.ID}, nil
	}

	window := f.store.Recent(ticker, pd+1)
	if len(window) < pd {
		return models.Prediction{}, &models.InsufficientHistoryError{Ticker: ticker, Date: day, Required: pd, Available: len(window)}
	}

	price := m.predict(features.InferenceRow(window, pd))
	if f.l != nil {
		f.l.Debug("price inferred",
			applogger.String("ticker", ticker),
			applogger.Date("date", day),
			applogger.Float64("price", price),
			applogger.String("model_id", m.ID))
	}
	return models.Prediction{Ticker: ticker, Date: day, Price: price, ModelID: m.ID}, nil
}

// ForecastSeries predicts horizon consecutive calendar days after the last observation.
// On failure it returns the points produced so far and a *models.ForecastError.
func (f *Forecaster) ForecastSeries(m *TrainedModel, ticker string, horizon int) ([]models.ForecastPoint, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", models.ErrInvalidParams, horizon)
	}
	if m == nil {
		return nil, &models.ModelNotTrainedError{}
	}
	if !m.Schema.HasTicker(ticker) {
		return nil, &models.UnknownTickerError{Ticker: ticker}
	}
	latest, ok := f.store.Latest(ticker)
	if !ok {
		return nil, &models.InsufficientHistoryError{Ticker: ticker, Required: m.Schema.PredictionDays()}
	}

	points := make([]models.ForecastPoint, 0, horizon)
	for k := 1; k <= horizon; k++ {
		date := util.AddDays(latest.Date, k)
		p, err := f.PredictPrice(m, ticker, date)
		if err != nil {
			return points, &models.ForecastError{Date: date, Err: err}
		}
		points = append(points, models.ForecastPoint{Date: p.Date, Price: p.Price, Actual: p.Actual})
	}

	if f.l != nil {
		f.l.Info("forecast generated",
			applogger.String("ticker", ticker),
			applogger.Int("horizon", horizon),
			applogger.Date("from", points[0].Date),
			applogger.Float64("first_price", points[0].Price),
			applogger.String("model_id", m.ID))
	}
	return points, nil
}
