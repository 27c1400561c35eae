// Package metrics provides observability for the change-request lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the request lifecycle module.
type Metrics struct {
	// Lifecycle transitions by outcome: submitted, approved, declined
	Transitions *prometheus.CounterVec

	// Approvals that applied a merge-patch, by target resource
	PatchesApplied *prometheus.CounterVec

	// Best-effort notification deliveries that failed
	NotifyFailures prometheus.Counter

	// Approve latency including target resource writes
	ApproveLatency prometheus.Histogram
}

// New creates a Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casegate_request_transitions_total",
			Help: "Change request lifecycle transitions by outcome",
		}, []string{"outcome"}),

		PatchesApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casegate_request_patches_applied_total",
			Help: "Merge patches applied by approvals, by target resource",
		}, []string{"target"}),

		NotifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "casegate_request_notify_failures_total",
			Help: "Best-effort notification deliveries that failed",
		}),

		ApproveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "casegate_request_approve_duration_seconds",
			Help:    "Duration of approve including target resource writes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementTransition records one lifecycle transition.
func (m *Metrics) IncrementTransition(outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(outcome).Inc()
	}
}

// IncrementPatchApplied records one applied merge-patch.
func (m *Metrics) IncrementPatchApplied(target string) {
	if m != nil {
		m.PatchesApplied.WithLabelValues(target).Inc()
	}
}

// IncrementNotifyFailure records one failed notification delivery.
func (m *Metrics) IncrementNotifyFailure() {
	if m != nil {
		m.NotifyFailures.Inc()
	}
}

// ObserveApproveLatency records the total approve duration.
func (m *Metrics) ObserveApproveLatency(d time.Duration) {
	if m != nil {
		m.ApproveLatency.Observe(d.Seconds())
	}
}
