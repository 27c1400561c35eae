package rules

import "time"

// Severity classifies how an unresolved rule failure affects the case.
type Severity string

const (
	// SeverityWarning failures hold the case at AMBER until overridden.
	SeverityWarning Severity = "warning"
	// SeverityBlocker failures force RED and make the case non-proceedable.
	SeverityBlocker Severity = "blocker"
)

// ResultStatus is the per-rule outcome.
type ResultStatus string

const (
	StatusPass             ResultStatus = "PASS"
	StatusWarn             ResultStatus = "WARN"
	StatusFail             ResultStatus = "FAIL"
	StatusError            ResultStatus = "ERROR"
	StatusPassWithOverride ResultStatus = "PASS_WITH_OVERRIDE"
)

// CaseStatus is the aggregate authorization status of a case.
type CaseStatus string

const (
	CaseGreen CaseStatus = "GREEN"
	CaseAmber CaseStatus = "AMBER"
	CaseRed   CaseStatus = "RED"
)

// DocumentRecord is one document attached to a case, reduced to the fields
// rule predicates read.
type DocumentRecord struct {
	Type                string `json:"type"`
	Status              string `json:"status"`
	HasSwornTranslation bool   `json:"hasSwornTranslation"`
	IsForeign           bool   `json:"isForeign"`
}

// Attachment is one slot in the fixed application attachment checklist.
type Attachment struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Linked bool   `json:"linked"`
}

// CaseSnapshot is the read-only projection of case data that rules evaluate
// against. It is owned by external case storage; this package never writes
// it.
type CaseSnapshot struct {
	CaseID             string           `json:"case_id"`
	ClientName         string           `json:"clientName"`
	ClientEmail        string           `json:"clientEmail"`
	CurrentSurname     string           `json:"currentSurname"`
	BirthSurname       string           `json:"birthSurname"`
	HasCorrectionNote  bool             `json:"hasCorrectionNote"`
	PipelineState      string           `json:"pipelineState"`
	CreatedAt          time.Time        `json:"createdAt"`
	BirthActRegistered bool             `json:"birthActRegistered"`
	Documents          []DocumentRecord `json:"documents"`
	Attachments        []Attachment     `json:"attachments"`
}

// OverrideRef records the justification attached to an overridden result.
type OverrideRef struct {
	Reason       string    `json:"reason"`
	OverriddenBy string    `json:"overriddenBy"`
	Timestamp    time.Time `json:"timestamp"`
}

// RuleResult is the outcome of evaluating a single rule against a snapshot.
type RuleResult struct {
	RuleID   string       `json:"rule_id"`
	RuleName string       `json:"rule_name"`
	Severity Severity     `json:"severity"`
	Status   ResultStatus `json:"status"`
	OK       bool         `json:"ok"`
	Message  string       `json:"message,omitempty"`
	Remedy   string       `json:"remedy,omitempty"`
	Override *OverrideRef `json:"override,omitempty"`
}

// Actions summarizes what the caller may do next.
type Actions struct {
	SubmitAllowed    bool `json:"submit_allowed"`
	OverrideRequired bool `json:"override_required"`
}

// Summary holds counts derived from the post-override results.
type Summary struct {
	TotalRules int `json:"total_rules"`
	Passed     int `json:"passed"`
	Warnings   int `json:"warnings"`
	Blockers   int `json:"blockers"`
	Errors     int `json:"errors"`
	Overrides  int `json:"overrides"`
}

// Evaluation is the full report for one case at one point in time.
type Evaluation struct {
	CaseID     string       `json:"case_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Status     CaseStatus   `json:"status"`
	CanProceed bool         `json:"canProceed"`
	Results    []RuleResult `json:"results"`
	Actions    Actions      `json:"actions"`
	Summary    Summary      `json:"summary"`
}
