package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/hooks"
)

var (
	registerOnce sync.Once

	propagationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsim",
			Subsystem: "engine",
			Name:      "propagations_total",
			Help:      "Total propagation runs.",
		},
		[]string{"kind"},
	)
	propagationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propsim",
			Subsystem: "engine",
			Name:      "propagation_duration_seconds",
			Help:      "Pathfinding duration per propagation run.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsim",
			Subsystem: "engine",
			Name:      "deliveries_total",
			Help:      "Information deliveries by propagation kind.",
		},
		[]string{"kind"},
	)
	dropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsim",
			Subsystem: "engine",
			Name:      "drops_total",
			Help:      "Propagation drops by reason.",
		},
		[]string{"reason"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsim",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propsim",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// RegisterMetrics registers every collector exactly once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			propagationRuns,
			propagationDuration,
			deliveriesTotal,
			dropsTotal,
			httpRequests,
			httpDuration,
		)
	})
}

// RecordPropagation records one finished propagation run.
func RecordPropagation(kind string, deliveries int, duration time.Duration) {
	RegisterMetrics()
	propagationRuns.WithLabelValues(kind).Inc()
	propagationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	deliveriesTotal.WithLabelValues(kind).Add(float64(deliveries))
}

// RecordDrop records one dropped propagation branch.
func RecordDrop(reason string) {
	RegisterMetrics()
	dropsTotal.WithLabelValues(reason).Inc()
}

// MetricsHooks returns the hook bundle that feeds the prometheus counters
// from engine events.
func MetricsHooks() (hooks.ConsumerDescriptor, hooks.HookBundle) {
	desc := hooks.ConsumerDescriptor{
		Name:        "prometheus",
		Category:    hooks.ConsumerCategoryInstrumentation,
		Description: "feeds propagation runs and drops into prometheus counters",
	}
	bundle := hooks.HookBundle{
		Drop: []hooks.DropHook{func(ev core.DropEvent) {
			RecordDrop(string(ev.Reason))
		}},
		Run: []hooks.RunHook{func(tr hooks.RunTrace) {
			kind := "broadcast"
			if tr.Targeted {
				kind = "targeted"
			}
			RecordPropagation(kind, tr.Deliveries, tr.Elapsed)
		}},
	}
	return desc, bundle
}
