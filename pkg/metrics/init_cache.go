package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCacheMetrics() {
	r.CacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "networkengine_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	r.CacheMissesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "networkengine_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	r.CacheEvictionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "networkengine_cache_evictions_total",
			Help: "Total number of result cache evictions (LRU or TTL)",
		},
	)

	r.CacheInvalidationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkengine_cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		},
		[]string{"scope"},
	)

	r.CacheEntries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "networkengine_cache_entries",
			Help: "Current number of result cache entries",
		},
	)
}
