package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/internal/services/features"
	"PriceCast/internal/services/ml"
	applogger "PriceCast/pkg/logger"
)

// TrainerConfig holds the fixed hyper-parameters of the forecasting model.
type TrainerConfig struct {
	PredictionDays int
	Trees          int
	Workers        int
	Tree           ml.TreeParams
}

type TrainParams struct {
	Tickers      []string // empty means every ticker in the store
	TestFraction float64
	Seed         int64
}

// Trainer builds features, fits the scaler and forest and scores the hold-out split.
type Trainer struct {
	cfg     TrainerConfig
	builder *features.Builder
	l       *applogger.Logger
	now     func() time.Time
}

func NewTrainer(cfg TrainerConfig) *Trainer {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	return &Trainer{
		cfg:     cfg,
		builder: features.NewBuilder(cfg.PredictionDays),
		now:     time.Now,
	}
}

func (t *Trainer) SetLogger(l *applogger.Logger) {
	t.l = l
	t.builder.SetLogger(l)
}

func (t *Trainer) PredictionDays() int { return t.cfg.PredictionDays }

// Train produces a new model snapshot from store. It never mutates previous snapshots.
func (t *Trainer) Train(ctx context.Context, store domrepo.SeriesStore, p TrainParams) (*TrainedModel, models.Metrics, error) {
	if !(p.TestFraction > 0 && p.TestFraction < 1) {
		return nil, models.Metrics{}, fmt.Errorf("%w: test fraction %v not in (0,1)", models.ErrInvalidParams, p.TestFraction)
	}
	p.Tickers = normalizeTickers(p.Tickers)
	start := t.now()

	table := t.builder.BuildAll(store, p.Tickers)
	considered := len(table.Schema.Tickers())
	if len(table.Rows) == 0 {
		return nil, models.Metrics{}, &models.InsufficientDataError{Tickers: considered, Skipped: table.Skipped}
	}

	x, y := table.Matrix()
	trainIdx, testIdx, err := ml.TrainTestSplit(len(x), p.TestFraction, p.Seed)
	if err != nil {
		return nil, models.Metrics{}, fmt.Errorf("%w: %v", models.ErrInvalidParams, err)
	}
	if len(trainIdx) == 0 {
		return nil, models.Metrics{}, &models.InsufficientDataError{Tickers: considered, Rows: len(x), Skipped: table.Skipped}
	}
	xTrain, yTrain := ml.Take(x, y, trainIdx)
	xTest, yTest := ml.Take(x, y, testIdx)

	scaler, err := ml.FitScaler(xTrain)
	if err != nil {
		return nil, models.Metrics{}, fmt.Errorf("fit scaler: %w", err)
	}
	xTrain = scaler.TransformAll(xTrain)
	xTest = scaler.TransformAll(xTest)

	forest, err := ml.FitForest(ctx, xTrain, yTrain, ml.ForestParams{
		NTrees:  t.cfg.Trees,
		Seed:    p.Seed,
		Workers: t.cfg.Workers,
		Tree:    t.cfg.Tree,
	})
	if err != nil {
		return nil, models.Metrics{}, fmt.Errorf("train: %w", err)
	}

	s := ml.Evaluate(yTest, forest.PredictAll(xTest))
	m := models.Metrics{
		MAE:       s.MAE,
		MSE:       s.MSE,
		RMSE:      s.RMSE,
		R2:        s.R2,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}

	model := &TrainedModel{
		ID:        uuid.NewString(),
		TrainedAt: t.now().UTC(),
		Schema:    table.Schema,
		Scaler:    scaler,
		Regressor: forest,
		Metrics:   m,
		Params:    p,
		Trees:     forest.NumTrees(),
		Skipped:   table.Skipped,
	}

	if t.l != nil {
		t.l.Info("model trained",
			applogger.String("model_id", model.ID),
			applogger.Int("train_rows", m.TrainRows),
			applogger.Int("test_rows", m.TestRows),
			applogger.Float64("mae", m.MAE),
			applogger.Float64("rmse", m.RMSE),
			applogger.Float64("r2", m.R2),
			applogger.Duration("duration_ms", t.now().Sub(start)))
	}
	return model, m, nil
}

func normalizeTickers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
