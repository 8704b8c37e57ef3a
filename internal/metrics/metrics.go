// Package metrics holds the Prometheus collectors the server exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/claude/repcycle/internal/split"
)

const namespace = "repcycle"

type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterMuscleStatus  *prometheus.CounterVec
	CounterIngestedLogs  *prometheus.CounterVec
	CounterRequestPanics prometheus.Counter

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

// NewRegistry returns a registry with build info, Go runtime and process
// collectors plus any extra collectors.
func NewRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg.MustRegister(extra...)
	return reg
}

// NewTestManager returns a Manager registered on a fresh registry.
func NewTestManager() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("test", reg), reg
}

func NewManager(subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "status"}),
		CounterMuscleStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "muscle_status_total",
			Help:      "Muscle progress entries computed, by status",
		}, []string{"status"}),
		CounterIngestedLogs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ingested_logs_total",
			Help:      "Workout logs written by imports, by source",
		}, []string{"source"}),
		CounterRequestPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveReport counts the statuses in a day report.
func (m *Manager) ObserveReport(r *split.DayReport) {
	if m == nil || r == nil {
		return
	}
	for status, n := range r.StatusCounts() {
		m.CounterMuscleStatus.WithLabelValues(string(status)).Add(float64(n))
	}
}
