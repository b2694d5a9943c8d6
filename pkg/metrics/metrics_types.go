// Package metrics exposes the engine's Prometheus instruments through a
// single Registry: analysis request counters and durations, graph-store
// call latencies, and result-cache effectiveness.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the engine
type Registry struct {
	// Analysis Metrics
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     *prometheus.HistogramVec
	AnalysisGraphNodes   prometheus.Histogram
	AnalysisGraphEdges   prometheus.Histogram
	AnalysisTruncations  prometheus.Counter
	PathSearchesTotal    *prometheus.CounterVec
	PathSearchHops       prometheus.Histogram
	PropagationReached   prometheus.Histogram

	// Graph Store Metrics
	StoreCallsTotal   *prometheus.CounterVec
	StoreCallDuration *prometheus.HistogramVec
	StoreFailures     *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal          prometheus.Counter
	CacheMissesTotal        prometheus.Counter
	CacheEvictionsTotal     prometheus.Counter
	CacheInvalidationsTotal *prometheus.CounterVec
	CacheEntries            prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initAnalysisMetrics()
	r.initStoreMetrics()
	r.initCacheMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
