package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pricecast",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of prediction API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricecast",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by prediction API endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricecast",
			Subsystem: "api",
			Name:      "cache_lookups_total",
			Help:      "Forecast response cache lookups by result",
		},
		[]string{"result"},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, CacheLookups)
	})
}
