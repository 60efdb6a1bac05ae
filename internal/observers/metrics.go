package observers

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"hookd/internal/callbacks"
)

var (
	pipelineEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookd",
			Subsystem: "pipeline",
			Name:      "events_total",
			Help:      "Total number of pipeline lifecycle events",
		},
		[]string{"event"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hookd",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	stageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookd",
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Total number of failed pipeline stages",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(pipelineEventsTotal, stageDuration, stageErrorsTotal)
}

// Metrics counts events and records stage latency from the duration carried
// by After* events.
type Metrics struct {
	callbacks.Func
}

func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Func = m.handle
	return m
}

func (m *Metrics) Name() string { return "metrics" }

func (m *Metrics) handle(_ context.Context, event callbacks.EventName, args callbacks.Args) {
	pipelineEventsTotal.WithLabelValues(event.Short()).Inc()
	if event.IsBefore() {
		return
	}
	stage := event.Stage()
	if d, ok := args.Duration(); ok {
		stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
	if args.Err() != nil {
		stageErrorsTotal.WithLabelValues(stage).Inc()
	}
}
