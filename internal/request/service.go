package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"casegate/internal/casefile"
	"casegate/internal/request/metrics"
	"casegate/pkg/caseid"
	dErrors "casegate/pkg/domain-errors"
	"casegate/pkg/ident"
	"casegate/pkg/requestcontext"
)

// Notifier delivers lifecycle events to an external dispatcher. Delivery is
// best-effort: errors are logged and counted but never fail the originating
// transition.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *ChangeRequest) error
	RequestApproved(ctx context.Context, req *ChangeRequest, result ApplyResult) error
}

// Service owns the change-request state machine:
// pending -> approved | declined, each transition exactly once. All writes to
// the request collections and the case/tree resources go through here.
type Service struct {
	store    Store
	cases    casefile.Store
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewService constructs the request lifecycle service.
func NewService(store Store, cases casefile.Store, notifier Notifier, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		cases:    cases,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("casegate/request"),
	}
}

// Submit validates and enqueues a new change request as pending.
func (s *Service) Submit(ctx context.Context, caseID string, typ Type, payload map[string]any) (*ChangeRequest, error) {
	ctx, span := s.tracer.Start(ctx, "request.Submit")
	defer span.End()

	if err := caseid.Validate(caseID); err != nil {
		return nil, err
	}
	if !ValidType(typ) {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			"invalid type, must be one of: case_update, tree_update, document_update, status_change")
	}
	if payload == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "payload must be a JSON object")
	}

	actor := requestcontext.Actor(ctx)
	if actor == "" {
		actor = "anonymous"
	}

	req := &ChangeRequest{
		ID:          ident.New("req"),
		CaseID:      caseID,
		Type:        typ,
		Payload:     payload,
		SubmittedAt: requestcontext.Now(ctx),
		SubmittedBy: actor,
		Status:      StatusPending,
	}

	if err := s.store.Put(ctx, CollectionPending, req); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist request", err)
	}
	s.metrics.IncrementTransition("submitted")

	s.logger.InfoContext(ctx, "change request submitted",
		"request_id", requestcontext.RequestID(ctx),
		"id", req.ID,
		"case_id", caseID,
		"type", string(typ),
		"submitted_by", actor,
	)

	if err := s.notifier.RequestSubmitted(ctx, req); err != nil {
		s.metrics.IncrementNotifyFailure()
		s.logger.ErrorContext(ctx, "submitted notification failed",
			"id", req.ID,
			"error", err,
		)
	}

	return req, nil
}

// Pending lists the open requests, newest submission first. Records the
// store cannot decode are skipped, not fatal.
func (s *Service) Pending(ctx context.Context) ([]*ChangeRequest, error) {
	reqs, err := s.store.List(ctx, CollectionPending)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list pending requests", err)
	}
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].SubmittedAt.After(reqs[j].SubmittedAt)
	})
	return reqs, nil
}

// Approve applies a pending request's payload to its target resource and
// archives the record. Loading from the pending collection is the
// concurrency guard: once the first transition completes, any further
// approve or decline for the same id fails NotFound.
func (s *Service) Approve(ctx context.Context, requestID, approver, comments string) (*ChangeRequest, *ApplyResult, error) {
	ctx, span := s.tracer.Start(ctx, "request.Approve")
	defer span.End()
	start := time.Now()

	if requestID == "" {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "request id is required")
	}

	req, err := s.store.Get(ctx, CollectionPending, requestID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "change request not found")
	}
	if err != nil {
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "load request", err)
	}

	if approver == "" {
		approver = requestcontext.Actor(ctx)
	}
	if approver == "" {
		approver = "unknown"
	}

	now := requestcontext.Now(ctx)
	applyResult, err := s.apply(ctx, req, approver, now)
	if err != nil {
		return nil, nil, err
	}

	req.Status = StatusApproved
	req.ApprovedAt = &now
	req.ApprovedBy = approver
	req.Comments = comments
	req.ApplyResult = applyResult

	if err := s.archive(ctx, CollectionApproved, req); err != nil {
		return nil, nil, err
	}
	s.metrics.IncrementTransition("approved")
	s.metrics.IncrementPatchApplied(applyResult.Target)
	s.metrics.ObserveApproveLatency(time.Since(start))

	s.logger.InfoContext(ctx, "change request approved",
		"request_id", requestcontext.RequestID(ctx),
		"id", req.ID,
		"case_id", req.CaseID,
		"approved_by", approver,
		"target", applyResult.Target,
	)

	if err := s.notifier.RequestApproved(ctx, req, *applyResult); err != nil {
		s.metrics.IncrementNotifyFailure()
		s.logger.ErrorContext(ctx, "approved notification failed",
			"id", req.ID,
			"error", err,
		)
	}

	return req, applyResult, nil
}

// Decline archives a pending request with a reviewer's reason, without
// touching the target resource.
func (s *Service) Decline(ctx context.Context, requestID, decliner, reason string) (*ChangeRequest, error) {
	ctx, span := s.tracer.Start(ctx, "request.Decline")
	defer span.End()

	if requestID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "decline reason is required")
	}

	req, err := s.store.Get(ctx, CollectionPending, requestID)
	if errors.Is(err, ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "change request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load request", err)
	}

	if decliner == "" {
		decliner = requestcontext.Actor(ctx)
	}
	if decliner == "" {
		decliner = "unknown"
	}

	now := requestcontext.Now(ctx)
	req.Status = StatusDeclined
	req.DeclinedAt = &now
	req.DeclinedBy = decliner
	req.Reason = reason

	if err := s.archive(ctx, CollectionDeclined, req); err != nil {
		return nil, err
	}
	s.metrics.IncrementTransition("declined")

	s.logger.InfoContext(ctx, "change request declined",
		"request_id", requestcontext.RequestID(ctx),
		"id", req.ID,
		"case_id", req.CaseID,
		"declined_by", decliner,
	)

	return req, nil
}

// History merges the approved and declined archives, most recently completed
// first.
func (s *Service) History(ctx context.Context, status Status, caseID string, limit int) ([]*ChangeRequest, int, error) {
	var cols []Collection
	switch status {
	case StatusApproved:
		cols = []Collection{CollectionApproved}
	case StatusDeclined:
		cols = []Collection{CollectionDeclined}
	default:
		cols = []Collection{CollectionApproved, CollectionDeclined}
	}

	if caseID != "" {
		if err := caseid.Validate(caseID); err != nil {
			return nil, 0, err
		}
	}
	if limit <= 0 {
		limit = 50
	}

	var all []*ChangeRequest
	for _, col := range cols {
		reqs, err := s.store.List(ctx, col)
		if err != nil {
			return nil, 0, dErrors.Wrap(dErrors.CodeInternal, "list archive", err)
		}
		for _, req := range reqs {
			if caseID == "" || req.CaseID == caseID {
				all = append(all, req)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CompletedAt().After(all[j].CompletedAt())
	})

	totalFound := len(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, totalFound, nil
}

// apply merge-patches the request payload onto its target resource, stamping
// the update audit fields. The case resource serves case_update,
// document_update, and status_change; tree_update patches the tree resource.
func (s *Service) apply(ctx context.Context, req *ChangeRequest, approver string, now time.Time) (*ApplyResult, error) {
	if req.Type == TypeTreeUpdate {
		doc, err := s.cases.GetTree(ctx, req.CaseID)
		if errors.Is(err, casefile.ErrNotFound) {
			doc = casefile.Document{}
		} else if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "load tree", err)
		}

		merged := casefile.Merge(doc, req.Payload)
		meta, _ := merged["metadata"].(casefile.Document)
		meta = casefile.Merge(meta, casefile.Document{
			"updated":   now.Format(time.RFC3339),
			"updatedBy": approver,
		})
		merged["metadata"] = meta

		if err := s.cases.PutTree(ctx, req.CaseID, merged); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "write tree", err)
		}
		return &ApplyResult{
			Applied: true,
			Details: fmt.Sprintf("updated tree for case %s", req.CaseID),
			Target:  "tree",
		}, nil
	}

	doc, err := s.cases.GetCase(ctx, req.CaseID)
	if errors.Is(err, casefile.ErrNotFound) {
		doc = casefile.Document{}
	} else if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load case", err)
	}

	merged := casefile.Merge(doc, req.Payload)
	merged["lastUpdated"] = now.Format(time.RFC3339)
	merged["lastUpdatedBy"] = approver

	if err := s.cases.PutCase(ctx, req.CaseID, merged); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "write case", err)
	}
	return &ApplyResult{
		Applied: true,
		Details: fmt.Sprintf("applied %s to case %s", req.Type, req.CaseID),
		Target:  "case",
	}, nil
}

// archive writes the terminal record before removing it from pending. A
// crash between the two writes leaves the record in both collections:
// duplication is the accepted failure bias, loss is not.
func (s *Service) archive(ctx context.Context, col Collection, req *ChangeRequest) error {
	if err := s.store.Put(ctx, col, req); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "archive request", err)
	}
	if err := s.store.Delete(ctx, CollectionPending, req.ID); err != nil {
		// The terminal record is already durable; report the failure so an
		// operator can clear the leftover pending copy.
		s.logger.ErrorContext(ctx, "pending delete failed after archive",
			"id", req.ID,
			"collection", string(col),
			"error", err,
		)
		return dErrors.Wrap(dErrors.CodeInternal, "remove pending request", err)
	}
	return nil
}
