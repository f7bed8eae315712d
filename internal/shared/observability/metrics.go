package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	RebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphindex_rebuilds_total",
		Help: "Total number of derived-artifact rebuilds, by artifact.",
	}, []string{"artifact"})

	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphindex_step_seconds",
		Help:    "Time spent regenerating one derived artifact.",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
	}, []string{"artifact"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphindex_runs_total",
		Help: "Total number of reindex runs, by outcome.",
	}, []string{"status"})

	WatchEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphindex_watch_events_total",
		Help: "Total number of file system events received in watch mode.",
	})

	WatchRunsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphindex_watch_runs_suppressed_total",
		Help: "Watch-mode reindex triggers dropped by the rate limiter.",
	})
)
