// Package metrics provides observability for the account gate.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for gate evaluations. All methods
// are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	// Evaluation outcomes by status
	Outcomes *prometheus.CounterVec

	// Full evaluation latency including resolver and ledger I/O
	EvaluateLatency prometheus.Histogram

	// Reservations lost to an existing device entry
	LedgerConflicts prometheus.Counter
}

// New creates a Metrics instance with all gate collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "devicegate_evaluations_total",
			Help: "Total gate evaluations by outcome status",
		}, []string{"status"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "devicegate_evaluate_duration_seconds",
			Help:    "Duration of full gate evaluation including resolver and ledger I/O",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		LedgerConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "devicegate_ledger_conflicts_total",
			Help: "Total reservations rejected because the device already holds an account",
		}),
	}
}

// IncrementOutcome records one evaluation outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementLedgerConflict records a duplicate-device rejection.
func (m *Metrics) IncrementLedgerConflict() {
	if m != nil {
		m.LedgerConflicts.Inc()
	}
}
