package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks operation outcomes, verification results and critical path durations.
type Metrics struct {
	Operations        *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	VerifierChanges   *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verireg_registry_operations_total",
			Help: "Total registry operations by operation and outcome code",
		}, []string{"operation", "outcome"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verireg_verifications_total",
			Help: "Verification attempts by outcome (verified, proof_mismatch, already_verified, ...)",
		}, []string{"outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verireg_registry_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		VerifierChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verireg_verifier_changes_total",
			Help: "Verifier set changes that altered membership",
		}, []string{"change"}),
	}
}

// ObserveOperation records the outcome and duration of one operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVerifierAdded() {
	m.VerifierChanges.WithLabelValues("added").Inc()
}

func (m *Metrics) IncrementVerifierRemoved() {
	m.VerifierChanges.WithLabelValues("removed").Inc()
}
