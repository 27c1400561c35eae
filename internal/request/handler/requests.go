package handler

import (
	"strings"

	"casegate/internal/request"
	dErrors "casegate/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /hac/submit.
type SubmitRequest struct {
	CaseID  string         `json:"caseId"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Validate checks the required submit fields. Case id format and type
// membership are enforced by the service.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	if r.CaseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "caseId is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "type is required")
	}
	return nil
}

// ApproveRequest is the HTTP request body for POST /hac/approve.
type ApproveRequest struct {
	RequestID  string `json:"requestId"`
	ApprovedBy string `json:"approvedBy"`
	Comments   string `json:"comments"`
}

// Validate checks the required approve fields.
func (r *ApproveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "requestId is required")
	}
	return nil
}

// DeclineRequest is the HTTP request body for POST /hac/decline.
type DeclineRequest struct {
	RequestID  string `json:"requestId"`
	DeclinedBy string `json:"declinedBy"`
	Reason     string `json:"reason"`
}

// Validate checks the required decline fields. The reason is re-checked by
// the service after trimming.
func (r *DeclineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "requestId is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}
	return nil
}

// SubmitResponse is the body returned by POST /hac/submit.
type SubmitResponse struct {
	RequestID string                 `json:"requestId"`
	Request   *request.ChangeRequest `json:"request"`
}

// ListResponse is the body returned by GET /hac/pending.
type ListResponse struct {
	Requests []*request.ChangeRequest `json:"requests"`
	Count    int                      `json:"count"`
}

// ApproveResponse is the body returned by POST /hac/approve.
type ApproveResponse struct {
	Request     *request.ChangeRequest `json:"request"`
	ApplyResult *request.ApplyResult   `json:"applyResult"`
}

// DeclineResponse is the body returned by POST /hac/decline.
type DeclineResponse struct {
	Request *request.ChangeRequest `json:"request"`
}

// HistoryResponse is the body returned by GET /hac/history.
type HistoryResponse struct {
	Requests   []*request.ChangeRequest `json:"requests"`
	Count      int                      `json:"count"`
	TotalFound int                      `json:"totalFound"`
}
