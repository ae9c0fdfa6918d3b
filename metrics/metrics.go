package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ClassificationsTotal counts pipeline runs by outcome kind ("ok" or an error kind).
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Total number of classification requests, labeled by result.",
	}, []string{"result"})

	// ProviderDurationSeconds is the wall time of a model call including the retry.
	ProviderDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signal",
		Subsystem: "classifier",
		Name:      "provider_duration_seconds",
		Help:      "Time spent waiting for the model provider, labeled by provider and result.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "result"})

	// ProviderRetriesTotal counts calls that needed the second attempt.
	ProviderRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "classifier",
		Name:      "provider_retries_total",
		Help:      "Total number of model calls that were retried.",
	}, []string{"provider"})

	ExportFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "classifier",
		Name:      "export_failures_total",
		Help:      "Total number of export documents that failed to render.",
	})

	HistoryWriteErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "classifier",
		Name:      "history_write_errors_total",
		Help:      "Total number of classification attempts that could not be recorded.",
	})
)

// Register registers classifier metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ClassificationsTotal,
			ProviderDurationSeconds,
			ProviderRetriesTotal,
			ExportFailuresTotal,
			HistoryWriteErrorsTotal,
		)
	})
}
