package runner

import "github.com/prometheus/client_golang/prometheus"

var (
	entriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelfetch",
			Subsystem: "run",
			Name:      "entries_total",
			Help:      "Processed file entries by terminal status",
		},
		[]string{"status"},
	)

	runsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelfetch",
			Subsystem: "run",
			Name:      "runs_total",
			Help:      "Completed orchestrator runs",
		},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelfetch",
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Duration of orchestrator runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(entriesTotal, runsTotal, runDuration)
}
