package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegate/internal/override"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// cleanSnapshot passes every catalog rule.
func cleanSnapshot() CaseSnapshot {
	attachments := make([]Attachment, 0, 10)
	for i := 1; i <= 10; i++ {
		attachments = append(attachments, Attachment{ID: i, Name: "attachment", Linked: true})
	}
	return CaseSnapshot{
		CaseID:             "case-001",
		ClientName:         "Jan Kowalski",
		ClientEmail:        "jan@example.com",
		CurrentSurname:     "Kowalski",
		BirthSurname:       "Kowalski",
		PipelineState:      "OBY_SUBMITTABLE",
		CreatedAt:          evalTime.AddDate(0, -1, 0),
		BirthActRegistered: true,
		Documents: []DocumentRecord{
			{Type: "passport", Status: "RECEIVED"},
			{Type: "birth_cert_PL", Status: "RECEIVED"},
			{Type: "birth_cert_foreign", Status: "RECEIVED", IsForeign: true, HasSwornTranslation: true},
		},
		Attachments: attachments,
	}
}

func resultFor(t *testing.T, eval Evaluation, ruleID string) RuleResult {
	t.Helper()
	for _, r := range eval.Results {
		if r.RuleID == ruleID {
			return r
		}
	}
	t.Fatalf("no result for rule %s", ruleID)
	return RuleResult{}
}

func TestEvaluateAllPass(t *testing.T) {
	eval := Evaluate(cleanSnapshot(), Catalog(), nil, evalTime)

	assert.Equal(t, CaseGreen, eval.Status)
	assert.True(t, eval.CanProceed)
	assert.True(t, eval.Actions.SubmitAllowed)
	assert.False(t, eval.Actions.OverrideRequired)
	assert.Equal(t, evalTime, eval.Timestamp)

	require.Len(t, eval.Results, 10)
	for _, r := range eval.Results {
		assert.Equal(t, StatusPass, r.Status, r.RuleID)
		assert.True(t, r.OK, r.RuleID)
	}

	assert.Equal(t, Summary{TotalRules: 10, Passed: 10}, eval.Summary)
}

func TestEvaluateDeterministic(t *testing.T) {
	snap := cleanSnapshot()
	snap.Documents = snap.Documents[:1]
	snap.BirthActRegistered = false

	first := Evaluate(snap, Catalog(), nil, evalTime)
	second := Evaluate(snap, Catalog(), nil, evalTime)

	assert.Equal(t, first, second)
}

func TestEvaluateBlockerForcesRed(t *testing.T) {
	snap := cleanSnapshot()
	snap.Documents = []DocumentRecord{{Type: "birth_cert_PL", Status: "RECEIVED"}}

	eval := Evaluate(snap, Catalog(), nil, evalTime)

	assert.Equal(t, CaseRed, eval.Status)
	assert.False(t, eval.CanProceed)
	assert.False(t, eval.Actions.SubmitAllowed)
	assert.True(t, eval.Actions.OverrideRequired)

	passport := resultFor(t, eval, "DOC.PASSPORT.REQUIRED")
	assert.Equal(t, StatusFail, passport.Status)
	assert.False(t, passport.OK)
	assert.NotEmpty(t, passport.Message)
	assert.NotEmpty(t, passport.Remedy)
	assert.Equal(t, 1, eval.Summary.Blockers)
}

func TestEvaluateWarningHoldsAmber(t *testing.T) {
	snap := cleanSnapshot()
	snap.BirthActRegistered = false

	eval := Evaluate(snap, Catalog(), nil, evalTime)

	assert.Equal(t, CaseAmber, eval.Status)
	assert.False(t, eval.CanProceed)
	assert.True(t, eval.Actions.OverrideRequired)

	usc := resultFor(t, eval, "USC.STATUS.REG")
	assert.Equal(t, StatusWarn, usc.Status)
	assert.Equal(t, 1, eval.Summary.Warnings)
	assert.Equal(t, 9, eval.Summary.Passed)
}

func TestEvaluateBlockerOutranksWarning(t *testing.T) {
	snap := cleanSnapshot()
	snap.BirthActRegistered = false
	snap.PipelineState = "INTAKE"

	eval := Evaluate(snap, Catalog(), nil, evalTime)

	assert.Equal(t, CaseRed, eval.Status)
	assert.Equal(t, 1, eval.Summary.Blockers)
	assert.Equal(t, 1, eval.Summary.Warnings)
}

func TestEvaluateOverrideFlipsToGreen(t *testing.T) {
	snap := cleanSnapshot()
	snap.Documents = []DocumentRecord{{Type: "birth_cert_PL", Status: "RECEIVED"}}

	overrides := []override.Override{{
		ID:           "override_1",
		CaseID:       snap.CaseID,
		RuleID:       "DOC.PASSPORT.REQUIRED",
		Reason:       "passport sighted in person",
		OverriddenBy: "reviewer-1",
		Timestamp:    evalTime,
	}}

	eval := Evaluate(snap, Catalog(), overrides, evalTime)

	assert.Equal(t, CaseGreen, eval.Status)
	assert.True(t, eval.CanProceed)
	assert.False(t, eval.Actions.OverrideRequired)

	passport := resultFor(t, eval, "DOC.PASSPORT.REQUIRED")
	assert.Equal(t, StatusPassWithOverride, passport.Status)
	assert.True(t, passport.OK)
	require.NotNil(t, passport.Override)
	assert.Equal(t, "passport sighted in person", passport.Override.Reason)
	assert.Equal(t, "reviewer-1", passport.Override.OverriddenBy)

	assert.Equal(t, 1, eval.Summary.Overrides)
	assert.Equal(t, 0, eval.Summary.Blockers)
}

func TestEvaluateOverrideOnPassingRuleIgnored(t *testing.T) {
	snap := cleanSnapshot()
	overrides := []override.Override{{
		CaseID:       snap.CaseID,
		RuleID:       "DOC.PASSPORT.REQUIRED",
		Reason:       "unnecessary",
		OverriddenBy: "reviewer-1",
	}}

	eval := Evaluate(snap, Catalog(), overrides, evalTime)

	passport := resultFor(t, eval, "DOC.PASSPORT.REQUIRED")
	assert.Equal(t, StatusPass, passport.Status)
	assert.Nil(t, passport.Override)
	assert.Equal(t, 0, eval.Summary.Overrides)
}

func TestEvaluateMalformedOverridesSkipped(t *testing.T) {
	snap := cleanSnapshot()
	snap.Documents = []DocumentRecord{{Type: "birth_cert_PL", Status: "RECEIVED"}}

	overrides := []override.Override{
		{CaseID: "other-case", RuleID: "DOC.PASSPORT.REQUIRED", Reason: "wrong case"},
		{CaseID: snap.CaseID, RuleID: "DOC.PASSPORT.REQUIRED", Reason: ""},
		{CaseID: snap.CaseID, RuleID: "", Reason: "no rule"},
	}

	eval := Evaluate(snap, Catalog(), overrides, evalTime)

	assert.Equal(t, CaseRed, eval.Status)
	passport := resultFor(t, eval, "DOC.PASSPORT.REQUIRED")
	assert.Equal(t, StatusFail, passport.Status)
}

func TestEvaluatePanicIsolatedToOneRule(t *testing.T) {
	catalog := []Rule{
		{
			ID:       "BROKEN.RULE",
			Name:     "Broken Rule",
			Severity: SeverityWarning,
			Predicate: func(CaseSnapshot, time.Time) (bool, error) {
				panic("nil map write")
			},
		},
		{
			ID:        "HEALTHY.RULE",
			Name:      "Healthy Rule",
			Severity:  SeverityWarning,
			Predicate: func(CaseSnapshot, time.Time) (bool, error) { return false, nil },
		},
	}

	eval := Evaluate(cleanSnapshot(), catalog, nil, evalTime)

	require.Len(t, eval.Results, 2)
	broken := resultFor(t, eval, "BROKEN.RULE")
	assert.Equal(t, StatusError, broken.Status)
	assert.Equal(t, SeverityBlocker, broken.Severity)
	assert.False(t, broken.OK)
	assert.Contains(t, broken.Message, "nil map write")

	healthy := resultFor(t, eval, "HEALTHY.RULE")
	assert.Equal(t, StatusPass, healthy.Status)

	// An engine fault is never a cosmetic warning.
	assert.Equal(t, CaseRed, eval.Status)
	assert.Equal(t, 1, eval.Summary.Errors)
}

func TestEvaluatePredicateError(t *testing.T) {
	catalog := []Rule{{
		ID:       "FAILING.RULE",
		Name:     "Failing Rule",
		Severity: SeverityWarning,
		Predicate: func(CaseSnapshot, time.Time) (bool, error) {
			return false, errors.New("upstream unavailable")
		},
	}}

	eval := Evaluate(cleanSnapshot(), catalog, nil, evalTime)

	result := resultFor(t, eval, "FAILING.RULE")
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, SeverityBlocker, result.Severity)
	assert.Contains(t, result.Message, "upstream unavailable")
	assert.Equal(t, CaseRed, eval.Status)
}

func TestEvaluateErrorResultOverridable(t *testing.T) {
	catalog := []Rule{{
		ID:       "FAILING.RULE",
		Name:     "Failing Rule",
		Severity: SeverityWarning,
		Predicate: func(CaseSnapshot, time.Time) (bool, error) {
			return false, errors.New("upstream unavailable")
		},
	}}
	snap := cleanSnapshot()
	overrides := []override.Override{{
		CaseID:       snap.CaseID,
		RuleID:       "FAILING.RULE",
		Reason:       "verified manually",
		OverriddenBy: "reviewer-2",
	}}

	eval := Evaluate(snap, catalog, overrides, evalTime)

	result := resultFor(t, eval, "FAILING.RULE")
	assert.Equal(t, StatusPassWithOverride, result.Status)
	assert.True(t, result.OK)
	assert.Equal(t, CaseGreen, eval.Status)
	assert.True(t, eval.CanProceed)
}

func TestEvaluateMissingPredicate(t *testing.T) {
	catalog := []Rule{{ID: "NO.PREDICATE", Name: "No Predicate", Severity: SeverityWarning}}

	eval := Evaluate(cleanSnapshot(), catalog, nil, evalTime)

	result := resultFor(t, eval, "NO.PREDICATE")
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, SeverityBlocker, result.Severity)
}
