package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"PriceCast/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	trainings      prometheus.Counter
	trainRows      prometheus.Gauge
	skippedTickers prometheus.Gauge
	trainDuration  prometheus.Histogram
	modelScore     *prometheus.GaugeVec
	predictions    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
}

// New creates a Prometheus recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		trainings: f.NewCounter(prometheus.CounterOpts{
			Name: "pricecast_training_runs_total",
			Help: "Total number of successful training runs",
		}),
		trainRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricecast_training_rows",
			Help: "Feature rows used by the current model",
		}),
		skippedTickers: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricecast_training_skipped_tickers",
			Help: "Tickers skipped for short history in the last training run",
		}),
		trainDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricecast_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		modelScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricecast_model_score",
			Help: "Hold-out accuracy of the current model",
		}, []string{"metric"}),
		predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricecast_predictions_total",
			Help: "Total number of answered price requests",
		}, []string{"ticker", "kind"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricecast_prediction_duration_seconds",
			Help:    "Duration of price requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricecast_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
	}
}

// RecordTraining records a completed training run and the new model's scores.
func (r *Recorder) RecordTraining(rows, skipped int, seconds float64, m models.Metrics) {
	r.trainings.Inc()
	r.trainRows.Set(float64(rows))
	r.skippedTickers.Set(float64(skipped))
	r.trainDuration.Observe(seconds)
	r.modelScore.WithLabelValues("mae").Set(m.MAE)
	r.modelScore.WithLabelValues("rmse").Set(m.RMSE)
	r.modelScore.WithLabelValues("r2").Set(m.R2)
}

func (r *Recorder) RecordPrediction(ticker, kind string, seconds float64) {
	r.predictions.WithLabelValues(ticker, kind).Inc()
	r.latency.WithLabelValues(kind).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
