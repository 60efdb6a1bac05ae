package callbacks

import "github.com/prometheus/client_golang/prometheus"

var (
	triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookd",
			Subsystem: "callbacks",
			Name:      "triggers_total",
			Help:      "Total number of triggered events that reached at least one callback",
		},
		[]string{"event"},
	)

	faultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookd",
			Subsystem: "callbacks",
			Name:      "faults_total",
			Help:      "Total number of recovered callback panics",
		},
		[]string{"event", "callback"},
	)
)

func init() {
	prometheus.MustRegister(triggersTotal, faultsTotal)
}
