package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "session",
		Name:      "saves_total",
		Help:      "Document saves by trigger and result",
	}, []string{"trigger", "result"})

	saveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inkwell",
		Subsystem: "session",
		Name:      "save_latency_seconds",
		Help:      "Latency of the document persistence call",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	versions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "versions",
		Name:      "snapshots_total",
		Help:      "Snapshot attempts: created, duplicate or error",
	}, []string{"result"})

	versionsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "versions",
		Name:      "pruned_total",
		Help:      "Versions removed by the pruning job",
	})

	suggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "suggest",
		Name:      "suggestions_total",
		Help:      "Suggestions produced by category",
	}, []string{"type"})

	suggestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inkwell",
		Subsystem: "suggest",
		Name:      "latency_seconds",
		Help:      "Time spent generating suggestions for one text",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "jobs",
		Name:      "runs_total",
		Help:      "Scheduled job runs by job and result",
	}, []string{"job", "result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inkwell",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	}, []string{"name"})
)

func ObserveSave(trigger string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	saves.WithLabelValues(trigger, result).Inc()
	saveLatency.Observe(d.Seconds())
}

func ObserveSnapshot(created bool, err error) {
	switch {
	case err != nil:
		versions.WithLabelValues("error").Inc()
	case created:
		versions.WithLabelValues("created").Inc()
	default:
		versions.WithLabelValues("duplicate").Inc()
	}
}

func AddPruned(n int64) {
	if n > 0 {
		versionsPruned.Add(float64(n))
	}
}

func ObserveSuggestions(d time.Duration, categories []string) {
	suggestLatency.Observe(d.Seconds())
	for _, c := range categories {
		suggestions.WithLabelValues(c).Inc()
	}
}

func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

func ObserveJob(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobRuns.WithLabelValues(name, result).Inc()
}
