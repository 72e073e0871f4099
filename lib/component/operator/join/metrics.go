package join

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	observationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "window_join",
		Name:      "observations_total",
		Help:      "Total number of observations received, by what the window did with them",
	}, []string{"operator", "stream", "result"})

	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "window_join",
		Name:      "ticks_total",
		Help:      "Total number of join evaluations",
	}, []string{"operator", "strategy"})

	tickErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "window_join",
		Name:      "tick_errors_total",
		Help:      "Total number of join evaluations failed on a precondition",
	}, []string{"operator", "strategy"})

	resultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "window_join",
		Name:      "results_total",
		Help:      "Total number of joined windows emitted",
	}, []string{"operator", "strategy"})

	factsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "window_join",
		Name:      "facts_total",
		Help:      "Total number of facts in emitted joined windows",
	}, []string{"operator", "strategy"})

	activeInstances = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "window_join",
		Name:      "active_instances",
		Help:      "Number of active window instances",
	}, []string{"operator", "stream"})
)
