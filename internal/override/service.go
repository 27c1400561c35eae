package override

import (
	"context"
	"log/slog"
	"strings"

	"casegate/pkg/caseid"
	dErrors "casegate/pkg/domain-errors"
	"casegate/pkg/ident"
	"casegate/pkg/requestcontext"
)

// Service validates and records manual rule overrides.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs the override service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save records a justification for a failing rule. The reason must be
// non-empty after trimming; a repeat save for the same (case, rule) pair
// replaces the earlier entry.
func (s *Service) Save(ctx context.Context, caseID, ruleID, reason string) (*Override, error) {
	if err := caseid.Validate(caseID); err != nil {
		return nil, err
	}
	if ruleID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rule id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "override reason is required")
	}

	actor := requestcontext.Actor(ctx)
	if actor == "" {
		actor = "anonymous"
	}

	ovr := Override{
		ID:           ident.New("override"),
		CaseID:       caseID,
		RuleID:       ruleID,
		Reason:       reason,
		OverriddenBy: actor,
		Timestamp:    requestcontext.Now(ctx),
	}

	if err := s.store.Upsert(ctx, ovr); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "save override", err)
	}

	s.logger.InfoContext(ctx, "override saved",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
		"rule_id", ruleID,
		"overridden_by", actor,
	)

	return &ovr, nil
}

// List returns the overrides recorded for a case.
func (s *Service) List(ctx context.Context, caseID string) ([]Override, error) {
	if err := caseid.Validate(caseID); err != nil {
		return nil, err
	}
	overrides, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list overrides", err)
	}
	return overrides, nil
}

// ListByCase satisfies the evaluator's override source without exposing the
// store directly.
func (s *Service) ListByCase(ctx context.Context, caseID string) ([]Override, error) {
	return s.store.ListByCase(ctx, caseID)
}
