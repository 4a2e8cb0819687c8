package fetch

import "github.com/prometheus/client_golang/prometheus"

var (
	downloadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelfetch",
			Subsystem: "fetch",
			Name:      "download_bytes_total",
			Help:      "Total bytes transferred from remote sources",
		},
	)

	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelfetch",
			Subsystem: "fetch",
			Name:      "attempts_total",
			Help:      "Fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelfetch",
			Subsystem: "fetch",
			Name:      "retries_total",
			Help:      "Retries performed after transient failures",
		},
	)

	inflightDownloads = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelfetch",
			Subsystem: "fetch",
			Name:      "inflight_downloads",
			Help:      "Downloads currently in progress",
		},
	)
)

func init() {
	prometheus.MustRegister(downloadBytesTotal, attemptsTotal, retriesTotal, inflightDownloads)
}
