package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fan-out candidate results
const (
	ResultNotified  = "notified"
	ResultDuplicate = "duplicate"
	ResultNoMatch   = "no_match"
	ResultFailed    = "failed"
)

var (
	FanOutCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "candidates_total",
			Help:      "Jobseekers scanned by skill-match fan-out, by result.",
		},
		[]string{"result"},
	)

	FanOutRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "runs_total",
			Help:      "Completed skill-match fan-out runs.",
		},
	)

	NotificationWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "writes_total",
			Help:      "Notification store writes, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	DependencyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dependency_failures_total",
			Help:      "Best-effort side effects that failed and were swallowed.",
		},
		[]string{"reason"},
	)
)
