package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching Prometheus metrics.
var (
	MatchPairsScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roommatch",
			Name:      "match_pairs_scored_total",
			Help:      "Total number of (reference, competitor) pairs scored",
		},
	)

	MatchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roommatch",
			Name:      "match_outcomes_total",
			Help:      "Match outcomes per competitor row",
		},
		[]string{"outcome"}, // "accepted_competitor" / "accepted_own" / "rejected" / "embed_failed"
	)

	MatchPartitionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "roommatch",
			Name:      "match_partition_duration_seconds",
			Help:      "Time spent matching one check-in date partition",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	MatchPartitionSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "roommatch",
			Name:      "match_partition_size",
			Help:      "Competitor rows per check-in date partition",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
)

var matchMetricsRegistered bool

// RegisterMatchingMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchingMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchPairsScoredTotal)
	prometheus.MustRegister(MatchOutcomesTotal)
	prometheus.MustRegister(MatchPartitionDuration)
	prometheus.MustRegister(MatchPartitionSize)
	matchMetricsRegistered = true
}
