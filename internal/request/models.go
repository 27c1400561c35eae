package request

import "time"

// Type selects which resource an approved request's payload is applied to.
type Type string

const (
	TypeCaseUpdate     Type = "case_update"
	TypeTreeUpdate     Type = "tree_update"
	TypeDocumentUpdate Type = "document_update"
	TypeStatusChange   Type = "status_change"
)

// ValidType reports whether t is one of the closed request type set.
func ValidType(t Type) bool {
	switch t {
	case TypeCaseUpdate, TypeTreeUpdate, TypeDocumentUpdate, TypeStatusChange:
		return true
	}
	return false
}

// Status is the lifecycle state of a change request. A request is pending
// until exactly one approve or decline transition moves it to a terminal
// state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// ApplyResult describes what an approval changed.
type ApplyResult struct {
	Applied bool   `json:"applied"`
	Details string `json:"details"`
	Target  string `json:"target,omitempty"`
}

// ChangeRequest is a reviewable proposal to merge-patch case or tree state.
// Terminal fields are set exactly once, at the approve or decline transition;
// the record is immutable afterwards.
type ChangeRequest struct {
	ID          string         `json:"id"`
	CaseID      string         `json:"caseId"`
	Type        Type           `json:"type"`
	Payload     map[string]any `json:"payload"`
	SubmittedAt time.Time      `json:"submittedAt"`
	SubmittedBy string         `json:"submittedBy"`
	Status      Status         `json:"status"`

	ApprovedAt  *time.Time   `json:"approvedAt,omitempty"`
	ApprovedBy  string       `json:"approvedBy,omitempty"`
	Comments    string       `json:"comments,omitempty"`
	ApplyResult *ApplyResult `json:"applyResult,omitempty"`

	DeclinedAt *time.Time `json:"declinedAt,omitempty"`
	DeclinedBy string     `json:"declinedBy,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// CompletedAt returns the terminal transition timestamp, or the zero time for
// a pending request. History sorting uses it.
func (r *ChangeRequest) CompletedAt() time.Time {
	if r.ApprovedAt != nil {
		return *r.ApprovedAt
	}
	if r.DeclinedAt != nil {
		return *r.DeclinedAt
	}
	return time.Time{}
}
