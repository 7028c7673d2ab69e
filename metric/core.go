package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcome label values.
const (
	OutcomeResolved = "resolved"
	OutcomeDefault  = "default"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics contains the core resolution metrics shared by every container.
type Metrics struct {
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	ValidationFailures prometheus.Counter
	VariablesDeclared  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all core metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "konfetti",
				Subsystem: "resolution",
				Name:      "total",
				Help:      "Total number of backend resolutions by resolver and outcome",
			},
			[]string{"resolver", "outcome"},
		),

		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "konfetti",
				Subsystem: "resolution",
				Name:      "duration_seconds",
				Help:      "Backend resolution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resolver"},
		),

		ValidationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "konfetti",
				Subsystem: "validation",
				Name:      "failures_total",
				Help:      "Total number of failures reported by eager validation checks",
			},
		),

		VariablesDeclared: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "konfetti",
				Subsystem: "variables",
				Name:      "declared",
				Help:      "Number of variables currently declared on the container",
			},
		),
	}
}

// RecordResolution increments the resolution counter for a resolver/outcome pair.
func (m *Metrics) RecordResolution(resolverName, outcome string) {
	m.ResolutionsTotal.WithLabelValues(resolverName, outcome).Inc()
}

// RecordResolutionDuration records how long a backend resolution took.
func (m *Metrics) RecordResolutionDuration(resolverName string, duration time.Duration) {
	m.ResolutionDuration.WithLabelValues(resolverName).Observe(duration.Seconds())
}

// RecordValidationFailures adds the failure count of one validation pass.
func (m *Metrics) RecordValidationFailures(count int) {
	m.ValidationFailures.Add(float64(count))
}

// RecordVariablesDeclared updates the declared-variable gauge.
func (m *Metrics) RecordVariablesDeclared(count int) {
	m.VariablesDeclared.Set(float64(count))
}
