// Package metrics provides observability for the rule evaluation module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for rule evaluation.
type Metrics struct {
	// Evaluations by aggregate case status
	Evaluations *prometheus.CounterVec

	// Unresolved rule failures by rule id and severity
	RuleFailures *prometheus.CounterVec

	// Full evaluation latency including snapshot and override loads
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all evaluation metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casegate_evaluations_total",
			Help: "Total case evaluations by aggregate status",
		}, []string{"status"}),

		RuleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "casegate_rule_failures_total",
			Help: "Unresolved rule failures by rule id and severity",
		}, []string{"rule_id", "severity"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "casegate_evaluate_duration_seconds",
			Help:    "Duration of full case evaluation including store reads",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementEvaluation records one evaluation outcome.
func (m *Metrics) IncrementEvaluation(status string) {
	if m != nil {
		m.Evaluations.WithLabelValues(status).Inc()
	}
}

// IncrementRuleFailure records one unresolved rule failure.
func (m *Metrics) IncrementRuleFailure(ruleID, severity string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(ruleID, severity).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
