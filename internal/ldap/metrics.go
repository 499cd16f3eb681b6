package ldap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes recorded by Metrics.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics provides observability for executed directory operations.
type Metrics struct {
	// Executed operations by kind and outcome
	Operations *prometheus.CounterVec

	// Execution latency by kind, retries included
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ldaptools_operations_total",
			Help: "Total directory operations by kind and outcome",
		}, []string{"operation", "outcome"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ldaptools_operation_duration_seconds",
			Help:    "Duration of directory operations including retries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
}

// ObserveOperation records one executed operation.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.Duration.WithLabelValues(operation).Observe(d.Seconds())
	}
}
