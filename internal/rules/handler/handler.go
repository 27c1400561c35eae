// Package handler exposes rule evaluation and overrides over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"casegate/internal/override"
	"casegate/internal/rules"
	dErrors "casegate/pkg/domain-errors"
	"casegate/pkg/platform/httputil"
	"casegate/pkg/requestcontext"
)

// Evaluator defines the interface for rule evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, caseID string) (*rules.Evaluation, error)
}

// OverrideService defines the interface for override writes and reads.
type OverrideService interface {
	Save(ctx context.Context, caseID, ruleID, reason string) (*override.Override, error)
	List(ctx context.Context, caseID string) ([]override.Override, error)
}

// Handler wires evaluation endpoints to the rules and override services.
type Handler struct {
	evaluator Evaluator
	overrides OverrideService
	logger    *slog.Logger
}

// New constructs a rules handler with its dependencies.
func New(evaluator Evaluator, overrides OverrideService, logger *slog.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		overrides: overrides,
		logger:    logger,
	}
}

// Register mounts evaluation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/hac/evaluate", h.HandleEvaluate)
	r.Post("/hac/override", h.HandleOverride)
	r.Get("/hac/overrides/{caseID}", h.HandleListOverrides)
}

// EvaluateRequest is the HTTP request body for POST /hac/evaluate.
type EvaluateRequest struct {
	CaseID string `json:"caseId"`
}

// Validate checks the required evaluate fields. Id format is enforced by
// the service.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	if r.CaseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "caseId is required")
	}
	return nil
}

// OverrideRequest is the HTTP request body for POST /hac/override.
type OverrideRequest struct {
	CaseID string `json:"caseId"`
	RuleID string `json:"ruleId"`
	Reason string `json:"reason"`
}

// Validate checks the required override fields.
func (r *OverrideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	if r.CaseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "caseId is required")
	}
	r.RuleID = strings.TrimSpace(r.RuleID)
	if r.RuleID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "ruleId is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}
	return nil
}

// OverrideResponse is the body returned by POST /hac/override.
type OverrideResponse struct {
	Override *override.Override `json:"override"`
}

// OverrideListResponse is the body returned by GET /hac/overrides/{caseID}.
type OverrideListResponse struct {
	Overrides []override.Override `json:"overrides"`
	Count     int                 `json:"count"`
}

// HandleEvaluate handles POST /hac/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	evaluation, err := h.evaluator.Evaluate(ctx, req.CaseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"case_id", req.CaseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "case evaluated",
		"request_id", requestID,
		"case_id", req.CaseID,
		"status", string(evaluation.Status),
		"can_proceed", evaluation.CanProceed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, evaluation)
}

// HandleOverride handles POST /hac/override requests.
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ovr, err := h.overrides.Save(ctx, req.CaseID, req.RuleID, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "override save failed",
			"request_id", requestID,
			"case_id", req.CaseID,
			"rule_id", req.RuleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, OverrideResponse{Override: ovr})
}

// HandleListOverrides handles GET /hac/overrides/{caseID} requests.
func (h *Handler) HandleListOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overrides, err := h.overrides.List(ctx, chi.URLParam(r, "caseID"))
	if err != nil {
		h.logger.ErrorContext(ctx, "override listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if overrides == nil {
		overrides = []override.Override{}
	}

	httputil.WriteJSON(w, http.StatusOK, OverrideListResponse{
		Overrides: overrides,
		Count:     len(overrides),
	})
}
