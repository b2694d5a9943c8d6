package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkengine_analyses_total",
			Help: "Total number of network analysis requests",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "networkengine_analysis_duration_seconds",
			Help:    "Analysis request duration in seconds, by phase",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"phase"},
	)

	r.AnalysisGraphNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "networkengine_analysis_graph_nodes",
			Help:    "Number of nodes in built subgraphs",
			Buckets: []float64{10, 25, 50, 100, 250, 500},
		},
	)

	r.AnalysisGraphEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "networkengine_analysis_graph_edges",
			Help:    "Number of edges in built subgraphs",
			Buckets: []float64{20, 50, 100, 500, 1000, 2000},
		},
	)

	r.AnalysisTruncations = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "networkengine_analysis_truncations_total",
			Help: "Total number of builds cut short by entity or relationship caps",
		},
	)

	r.PathSearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkengine_path_searches_total",
			Help: "Total number of shortest path searches",
		},
		[]string{"outcome"},
	)

	r.PathSearchHops = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "networkengine_path_search_hops",
			Help:    "Hop count of found paths",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	r.PropagationReached = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "networkengine_propagation_reached_entities",
			Help:    "Number of entities reached per risk propagation run",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250},
		},
	)
}
