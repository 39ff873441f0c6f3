package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/util"
)

const (
	KindLookup   = "lookup"
	KindInferred = "inferred"
	KindSeries   = "series"
)

// Predictor owns the served model. Train builds a complete snapshot before swapping
// it in; readers holding an older snapshot keep using it unchanged.
type Predictor struct {
	store      domrepo.SeriesStore
	trainer    *Trainer
	forecaster *Forecaster

	current atomic.Pointer[TrainedModel]
	trainMu sync.Mutex

	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewPredictor(store domrepo.SeriesStore, trainer *Trainer, forecaster *Forecaster) *Predictor {
	return &Predictor{store: store, trainer: trainer, forecaster: forecaster}
}

func (p *Predictor) SetPublisher(pub domrepo.EventPublisher) { p.pub = pub }
func (p *Predictor) SetMetrics(m domrepo.Metrics)            { p.metrics = m }

func (p *Predictor) SetLogger(l *applogger.Logger) {
	p.l = l
	p.trainer.SetLogger(l)
	p.forecaster.SetLogger(l)
}

// Model returns the current snapshot, or nil before the first successful Train.
func (p *Predictor) Model() *TrainedModel { return p.current.Load() }

func (p *Predictor) Store() domrepo.SeriesStore { return p.store }

// Train fits a new model, makes it current and returns it. Concurrent calls are
// serialized, but the current model may already be newer by the time the caller reads it.
func (p *Predictor) Train(ctx context.Context, params TrainParams) (*TrainedModel, error) {
	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	start := time.Now()
	model, m, err := p.trainer.Train(ctx, p.store, params)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	p.current.Store(model)

	if p.metrics != nil {
		p.metrics.RecordTraining(m.TrainRows+m.TestRows, len(model.Skipped), time.Since(start).Seconds(), m)
	}
	if p.pub != nil {
		ev := models.ModelTrainedEvent{
			ModelID:       model.ID,
			SchemaVersion: model.Schema.Version(),
			TrainedAt:     model.TrainedAt,
			Tickers:       model.Schema.Tickers(),
			Skipped:       model.Skipped,
			Metrics:       m,
		}
		if err := p.pub.PublishModelTrained(ctx, ev); err != nil {
			p.warn("publish model_trained failed", err)
		}
	}
	return model, nil
}

// PredictPrice resolves ticker's close on date against the current snapshot.
func (p *Predictor) PredictPrice(ctx context.Context, ticker string, date time.Time) (models.Prediction, error) {
	start := time.Now()
	pred, err := p.forecaster.PredictPrice(p.Model(), ticker, date)
	if err != nil {
		p.recordError(err)
		return models.Prediction{}, err
	}
	kind := KindInferred
	if pred.Actual {
		kind = KindLookup
	}
	if p.metrics != nil {
		p.metrics.RecordPrediction(ticker, kind, time.Since(start).Seconds())
	}
	if p.l != nil {
		p.l.Info("prediction",
			applogger.String("ticker", ticker),
			applogger.Date("date", pred.Date),
			applogger.Float64("price", pred.Price),
			applogger.String("kind", kind))
	}
	return pred, nil
}

// PredictPriceISO accepts the date as a string (YYYY-MM-DD, RFC3339 or unix seconds).
func (p *Predictor) PredictPriceISO(ctx context.Context, ticker, date string) (models.Prediction, error) {
	d, ok := util.ParseDate(date)
	if !ok {
		err := fmt.Errorf("%w: unparseable date %q", models.ErrInvalidParams, date)
		p.recordError(err)
		return models.Prediction{}, err
	}
	return p.PredictPrice(ctx, ticker, d)
}

// ForecastSeries predicts horizon days past ticker's last observation and publishes
// the result. Partial sequences are returned along with the error that cut them short.
func (p *Predictor) ForecastSeries(ctx context.Context, ticker string, horizon int) ([]models.ForecastPoint, error) {
	start := time.Now()
	model := p.Model()
	points, err := p.forecaster.ForecastSeries(model, ticker, horizon)
	if err != nil {
		p.recordError(err)
	} else if p.metrics != nil {
		p.metrics.RecordPrediction(ticker, KindSeries, time.Since(start).Seconds())
	}

	if p.pub != nil && model != nil && len(points) > 0 {
		ev := models.ForecastEvent{ModelID: model.ID, Ticker: ticker, Points: points}
		if err != nil {
			ev.Error = err.Error()
		}
		if perr := p.pub.PublishForecast(ctx, ev); perr != nil {
			p.warn("publish forecast_generated failed", perr)
		}
	}
	return points, err
}

// Tickers lists the tickers the current model can answer for, or the store's
// tickers before training.
func (p *Predictor) Tickers() []string {
	if m := p.Model(); m != nil {
		return m.Schema.Tickers()
	}
	return p.store.Tickers()
}

func (p *Predictor) recordError(err error) {
	if p.metrics != nil {
		p.metrics.RecordError(ErrorKind(err))
	}
}

func (p *Predictor) warn(msg string, err error) {
	if p.l != nil {
		p.l.Warn(msg, applogger.Error(err))
	}
}

// ErrorKind classifies domain errors for metrics labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrModelNotTrained):
		return "not_trained"
	case errors.Is(err, models.ErrUnknownTicker):
		return "unknown_ticker"
	case errors.Is(err, models.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrNoObservation):
		return "no_observation"
	case errors.Is(err, models.ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
