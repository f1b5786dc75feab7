// Package metrics exposes Prometheus counters for requests and workout progression.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SetupPrometheus returns a registry with the Go runtime and process collectors registered.
func SetupPrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults.
	)
	return reg
}

type Manager struct {
	CounterRequests          *prometheus.CounterVec
	CounterSessionsCompleted prometheus.Counter
	CounterWeekAdvances      prometheus.Counter
	CounterCascadesTruncated prometheus.Counter

	HistogramRequestDuration *prometheus.HistogramVec
}

// NewTestManager registers against a throwaway registry.
func NewTestManager() *Manager {
	return NewManager("liftplan", "test", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "status"}),
		CounterSessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_completed_total",
			Help:      "The total number of workout sessions marked completed",
		}),
		CounterWeekAdvances: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "program_week_advances_total",
			Help:      "The total number of program weeks advanced",
		}),
		CounterCascadesTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reschedule_cascades_truncated_total",
			Help:      "Rest day reschedules that dropped a workout past the look-ahead window",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status_code"}),
	}
}
