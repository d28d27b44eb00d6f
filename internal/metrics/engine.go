package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval engine Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recollect",
			Name:      "searches_total",
			Help:      "Total number of reflection searches",
		},
		[]string{"mode", "status"}, // mode: decay|plain|lexical|none, status: ok|invalid
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recollect",
			Name:      "search_duration_seconds",
			Help:      "End-to-end reflection search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	CollectionQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recollect",
			Name:      "collection_queries_total",
			Help:      "Per-collection fan-out query outcomes",
		},
		[]string{"status"}, // "ok" / "error" / "timeout"
	)

	ResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recollect",
			Name:      "results_returned",
			Help:      "Result count per search after aggregation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

// Embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recollect",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recollect",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recollect",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registered bool

// Register registers all engine metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		SearchesTotal,
		SearchDuration,
		CollectionQueriesTotal,
		ResultsReturned,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingCacheTotal,
	)
	registered = true
}
