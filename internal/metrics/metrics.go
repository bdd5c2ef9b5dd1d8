// Package metrics holds the Prometheus collectors of the analysis engine.
// They are registered on the default registry via promauto and exposed on
// /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forensics"

// Outcomes recorded on DetectorRunsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

var (
	// DetectorRunsTotal counts detector runs by detector and outcome.
	// outcome: success | failed
	DetectorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "runs_total",
			Help:      "Total number of detector runs by detector and outcome.",
		},
		[]string{"detector", "outcome"},
	)

	// DetectorFailuresTotal counts failed detector runs by error kind.
	DetectorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "failures_total",
			Help:      "Total number of failed detector runs by detector and error kind.",
		},
		[]string{"detector", "kind"},
	)

	DetectorDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "duration_seconds",
			Help:      "Duration of a single detector run in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		},
		[]string{"detector"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "analyses_total",
			Help:      "Total number of ledger analyses by source.",
		},
		[]string{"source"},
	)

	LedgerRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ledger_rows",
			Help:      "Number of rows per analysed ledger.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 7),
		},
	)

	// QueuedJobs tracks analysis jobs waiting in the operator queue.
	QueuedJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "operator",
			Name:      "queued_jobs",
			Help:      "Number of analysis jobs waiting for a worker.",
		},
	)
)
