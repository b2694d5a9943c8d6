package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreCallsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkengine_store_calls_total",
			Help: "Total number of graph store calls",
		},
		[]string{"operation", "status"},
	)

	r.StoreCallDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "networkengine_store_call_duration_seconds",
			Help:    "Graph store call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	r.StoreFailures = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkengine_store_failures_total",
			Help: "Total number of failed graph store calls",
		},
		[]string{"operation"},
	)
}
