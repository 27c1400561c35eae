package rules

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"casegate/internal/override"
	"casegate/internal/rules/metrics"
	"casegate/pkg/caseid"
	dErrors "casegate/pkg/domain-errors"
	"casegate/pkg/requestcontext"
)

// SnapshotSource loads the read-only case projection the evaluator runs
// against. Case data is owned by external storage.
type SnapshotSource interface {
	Snapshot(ctx context.Context, caseID string) (CaseSnapshot, error)
}

// OverrideSource lists the recorded overrides for a case.
type OverrideSource interface {
	ListByCase(ctx context.Context, caseID string) ([]override.Override, error)
}

// Service orchestrates an evaluation: load the snapshot and override set,
// then run the pure evaluator. All rule logic stays in Evaluate so it remains
// reproducible and I/O-free.
type Service struct {
	snapshots SnapshotSource
	overrides OverrideSource
	catalog   []Rule
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewService constructs the evaluation service over the given sources.
func NewService(snapshots SnapshotSource, overrides OverrideSource, m *metrics.Metrics) *Service {
	return &Service{
		snapshots: snapshots,
		overrides: overrides,
		catalog:   Catalog(),
		metrics:   m,
		tracer:    otel.Tracer("casegate/rules"),
	}
}

// Evaluate produces the full authorization report for a case.
func (s *Service) Evaluate(ctx context.Context, caseID string) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "rules.Evaluate")
	defer span.End()

	if err := caseid.Validate(caseID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	start := time.Now()

	snap, err := s.snapshots.Snapshot(ctx, caseID)
	if err != nil {
		return nil, err
	}

	overrides, err := s.overrides.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load overrides", err)
	}

	evaluation := Evaluate(snap, s.catalog, overrides, now)

	s.metrics.IncrementEvaluation(string(evaluation.Status))
	for _, r := range evaluation.Results {
		if !r.OK {
			s.metrics.IncrementRuleFailure(r.RuleID, string(r.Severity))
		}
	}
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	return &evaluation, nil
}
