// Package handler exposes the change request lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"casegate/internal/request"
	"casegate/pkg/platform/httputil"
	"casegate/pkg/requestcontext"
)

// Service defines the interface for request lifecycle operations.
type Service interface {
	Submit(ctx context.Context, caseID string, typ request.Type, payload map[string]any) (*request.ChangeRequest, error)
	Pending(ctx context.Context) ([]*request.ChangeRequest, error)
	Approve(ctx context.Context, requestID, approver, comments string) (*request.ChangeRequest, *request.ApplyResult, error)
	Decline(ctx context.Context, requestID, decliner, reason string) (*request.ChangeRequest, error)
	History(ctx context.Context, status request.Status, caseID string, limit int) ([]*request.ChangeRequest, int, error)
}

// Handler wires the lifecycle endpoints to the request service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a request handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts lifecycle endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/hac/submit", h.HandleSubmit)
	r.Get("/hac/pending", h.HandlePending)
	r.Post("/hac/approve", h.HandleApprove)
	r.Post("/hac/decline", h.HandleDecline)
	r.Get("/hac/history", h.HandleHistory)
}

// HandleSubmit handles POST /hac/submit requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Submit(ctx, req.CaseID, request.Type(req.Type), req.Payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "submit failed",
			"request_id", requestID,
			"case_id", req.CaseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		RequestID: created.ID,
		Request:   created,
	})
}

// HandlePending handles GET /hac/pending requests.
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqs, err := h.service.Pending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*request.ChangeRequest{}
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Requests: reqs,
		Count:    len(reqs),
	})
}

// HandleApprove handles POST /hac/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	approved, applyResult, err := h.service.Approve(ctx, req.RequestID, req.ApprovedBy, req.Comments)
	if err != nil {
		h.logger.ErrorContext(ctx, "approve failed",
			"request_id", requestID,
			"id", req.RequestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "request approved",
		"request_id", requestID,
		"id", approved.ID,
		"case_id", approved.CaseID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, ApproveResponse{
		Request:     approved,
		ApplyResult: applyResult,
	})
}

// HandleDecline handles POST /hac/decline requests.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DeclineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	declined, err := h.service.Decline(ctx, req.RequestID, req.DeclinedBy, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "decline failed",
			"request_id", requestID,
			"id", req.RequestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DeclineResponse{Request: declined})
}

// HandleHistory handles GET /hac/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	reqs, totalFound, err := h.service.History(ctx, request.Status(q.Get("status")), q.Get("caseId"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "history listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*request.ChangeRequest{}
	}

	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{
		Requests:   reqs,
		Count:      len(reqs),
		TotalFound: totalFound,
	})
}
