package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ranking Prometheus metrics.
var (
	RankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casematch",
			Name:      "rank_requests_total",
			Help:      "Total number of ranking passes",
		},
		[]string{"operation", "status"},
	)

	RankDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casematch",
			Name:      "rank_duration_seconds",
			Help:      "Ranking pass duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	CandidatesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "casematch",
			Name:      "candidates_scored_total",
			Help:      "Total number of candidate records scored",
		},
	)

	CatalogRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "casematch",
			Name:      "catalog_records",
			Help:      "Number of records in the loaded catalog",
		},
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casematch",
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts",
		},
		[]string{"status"},
	)

	WeightUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casematch",
			Name:      "weight_updates_total",
			Help:      "Weight configuration changes",
		},
		[]string{"kind"}, // "replace" / "update" / "reset"
	)
)

var rankMetricsRegistered bool

// RegisterRankingMetrics registers ranking, catalog and weight metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankRequestsTotal)
	prometheus.MustRegister(RankDuration)
	prometheus.MustRegister(CandidatesScoredTotal)
	prometheus.MustRegister(CatalogRecords)
	prometheus.MustRegister(CatalogReloadsTotal)
	prometheus.MustRegister(WeightUpdatesTotal)
	rankMetricsRegistered = true
}
