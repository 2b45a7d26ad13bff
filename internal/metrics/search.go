package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and projection refresh Prometheus metrics. Registered explicitly
// from main (no init) so embedded SDK users without a metrics endpoint do not
// pay for registration.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "okulbul",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	SearchResultsTotal = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "okulbul",
			Name:      "search_results",
			Help:      "Total matches per search before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"mode"},
	)

	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "okulbul",
			Name:      "refresh_duration_seconds",
			Help:      "Projection rebuild duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	RefreshRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "okulbul",
			Name:      "refresh_records",
			Help:      "Records in the last published snapshot",
		},
	)

	RefreshSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "okulbul",
			Name:      "refresh_skips_total",
			Help:      "Schools skipped for data-quality reasons across all cycles",
		},
	)

	RefreshFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "okulbul",
			Name:      "refresh_failures_total",
			Help:      "Refresh cycles that failed to publish",
		},
	)

	SnapshotPublishedTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "okulbul",
			Name:      "snapshot_published_timestamp_seconds",
			Help:      "Unix time the current snapshot was published; age is time() minus this",
		},
	)
)

// RegisterSearchMetrics registers search and refresh metrics with the default
// registry.
func RegisterSearchMetrics() {
	prometheus.MustRegister(
		SearchDuration,
		SearchResultsTotal,
		RefreshDuration,
		RefreshRecords,
		RefreshSkipsTotal,
		RefreshFailuresTotal,
		SnapshotPublishedTimestamp,
	)
}
