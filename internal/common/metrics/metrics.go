// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_resolved_total",
			Help: "Total number of queries resolved, by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_query_duration_seconds",
			Help: "End-to-end query resolution duration in seconds",
		},
		[]string{"path"},
	)

	EntitiesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_entities_dropped_total",
			Help: "Entities dropped during normalization, by entity key",
		},
		[]string{"entity"},
	)

	FuzzyMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_fuzzy_matches_total",
			Help: "Fuzzy match attempts, by path and whether any candidate cleared the threshold",
		},
		[]string{"path", "hit"},
	)

	NLUFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_nlu_fallbacks_total",
			Help: "NLU calls that degraded to the canned fallback outcome",
		},
	)
)
