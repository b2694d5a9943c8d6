package metrics

import (
	"time"
)

// RecordAnalysis records one completed analysis request.
func (r *Registry) RecordAnalysis(status string, duration time.Duration, nodes, edges int, truncated bool) {
	r.AnalysesTotal.WithLabelValues(status).Inc()
	r.AnalysisDuration.WithLabelValues("total").Observe(duration.Seconds())
	r.AnalysisGraphNodes.Observe(float64(nodes))
	r.AnalysisGraphEdges.Observe(float64(edges))
	if truncated {
		r.AnalysisTruncations.Inc()
	}
}

// RecordPhase records the duration of one analysis phase (build, centrality,
// communities, hubs, propagation, layout).
func (r *Registry) RecordPhase(phase string, duration time.Duration) {
	r.AnalysisDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordPathSearch records one shortest path search.
func (r *Registry) RecordPathSearch(found bool, hops int, err error) {
	switch {
	case err != nil:
		r.PathSearchesTotal.WithLabelValues("error").Inc()
	case found:
		r.PathSearchesTotal.WithLabelValues("found").Inc()
		r.PathSearchHops.Observe(float64(hops))
	default:
		r.PathSearchesTotal.WithLabelValues("not_found").Inc()
	}
}

// RecordPropagation records the fan-out of one risk propagation run.
func (r *Registry) RecordPropagation(reached int) {
	r.PropagationReached.Observe(float64(reached))
}

// RecordStoreCall records a graph store call with its duration.
func (r *Registry) RecordStoreCall(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		r.StoreFailures.WithLabelValues(operation).Inc()
	}
	r.StoreCallsTotal.WithLabelValues(operation, status).Inc()
	r.StoreCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheHit records a result cache hit.
func (r *Registry) RecordCacheHit() {
	r.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a result cache miss.
func (r *Registry) RecordCacheMiss() {
	r.CacheMissesTotal.Inc()
}

// RecordCacheEviction records an LRU or TTL eviction.
func (r *Registry) RecordCacheEviction() {
	r.CacheEvictionsTotal.Inc()
}

// RecordCacheInvalidation records an explicit invalidation.
func (r *Registry) RecordCacheInvalidation(scope string) {
	r.CacheInvalidationsTotal.WithLabelValues(scope).Inc()
}

// SetCacheEntries updates the cache size gauge.
func (r *Registry) SetCacheEntries(n int) {
	r.CacheEntries.Set(float64(n))
}
