// Package metrics exposes Prometheus collectors for the collection engine.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	targetsTotal         *prometheus.CounterVec
	fetchesTotal         *prometheus.CounterVec
	escalationsTotal     *prometheus.CounterVec
	resolutionsTotal     *prometheus.CounterVec
	snapshotUpsertsTotal *prometheus.CounterVec
	runDurationSeconds   prometheus.Histogram
	fetchDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	initHTTP()
	once.Do(func() {
		targetsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_targets_total",
				Help: "Total targets processed, labeled by platform and status.",
			},
			[]string{"platform", "status"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_fetches_total",
				Help: "Total page fetches, labeled by platform and tier.",
			},
			[]string{"platform", "tier"},
		)

		escalationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_headless_escalations_total",
				Help: "Total static-to-headless escalations, labeled by platform.",
			},
			[]string{"platform"},
		)

		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_resolutions_total",
				Help: "Total identifier resolutions, labeled by platform and outcome.",
			},
			[]string{"platform", "outcome"},
		)

		snapshotUpsertsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_snapshot_upserts_total",
				Help: "Total snapshot rows written, labeled by platform.",
			},
			[]string{"platform"},
		)

		runDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "collector_run_duration_seconds",
				Help:    "Histogram of full collection run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collector_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by platform and tier.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"platform", "tier"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTarget increments the per-platform target counter for a status.
func ObserveTarget(platform string, status string) {
	targetsTotal.WithLabelValues(platform, status).Inc()
}

// ObserveFetch records one fetch on the given tier with its latency.
func ObserveFetch(platform string, tier string, duration time.Duration) {
	fetchesTotal.WithLabelValues(platform, tier).Inc()
	fetchDurationSeconds.WithLabelValues(platform, tier).Observe(duration.Seconds())
}

// ObserveEscalation increments the headless escalation counter.
func ObserveEscalation(platform string) {
	escalationsTotal.WithLabelValues(platform).Inc()
}

// ObserveResolution increments the resolver outcome counter.
func ObserveResolution(platform string, outcome string) {
	resolutionsTotal.WithLabelValues(platform, outcome).Inc()
}

// ObserveSnapshotUpsert increments the snapshot write counter.
func ObserveSnapshotUpsert(platform string) {
	snapshotUpsertsTotal.WithLabelValues(platform).Inc()
}

// ObserveRunDuration records the duration of a full collection run.
func ObserveRunDuration(duration time.Duration) {
	runDurationSeconds.Observe(duration.Seconds())
}
