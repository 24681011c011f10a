package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search operation labels.
const (
	OpCount  = "count"
	OpSearch = "search"
)

// Search and ingest Prometheus metrics.
var (
	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textdex",
			Subsystem: "search",
			Name:      "query_duration_seconds",
			Help:      "Query evaluation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op"},
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total number of count and search queries",
		},
		[]string{"op", "status"}, // status: "ok" / "error"
	)

	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Subsystem: "index",
			Name:      "documents_indexed_total",
			Help:      "Total number of documents written",
		},
		[]string{"index"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers search and ingest metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchQueryDuration)
		prometheus.MustRegister(SearchQueriesTotal)
		prometheus.MustRegister(DocumentsIndexedTotal)
	})
}
