package override

import "time"

// Override is a recorded manual justification marking an otherwise-failing
// rule as resolved for a case. Exactly one override exists per
// (case id, rule id) pair; saving again replaces the prior entry.
type Override struct {
	ID           string    `json:"id"`
	CaseID       string    `json:"caseId"`
	RuleID       string    `json:"ruleId"`
	Reason       string    `json:"reason"`
	OverriddenBy string    `json:"overriddenBy"`
	Timestamp    time.Time `json:"timestamp"`
}
