package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the application's Prometheus collectors.
type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterPanics        prometheus.Counter
	CounterPlans         *prometheus.CounterVec
	CounterLogsSaved     prometheus.Counter
	CounterBadgesEarned  *prometheus.CounterVec
	CounterCorruptStates prometheus.Counter
	CounterReports       *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistPlanDuration    prometheus.Histogram
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitroadmap", "test", reg), reg
}

// NewManager registers every collector with reg.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		CounterPlans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_total",
			Help:      "The total number of generated plans by source",
		}, []string{"source"}),
		CounterLogsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "daily_logs_saved_total",
			Help:      "The total number of saved daily logs",
		}),
		CounterBadgesEarned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "badges_earned_total",
			Help:      "The total number of earned badges",
		}, []string{"badge"}),
		CounterCorruptStates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "corrupt_states_total",
			Help:      "The total number of stored records that could not be decoded",
		}),
		CounterReports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "browser_reports_total",
			Help:      "The total number of CSP violation and Reporting API reports received",
		}, []string{"type"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		HistPlanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_duration_seconds",
			Help:      "Duration of plan generation including the LLM call in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}),
	}
}
