package rules

import (
	"fmt"
	"time"

	"casegate/internal/override"
)

// Evaluate runs every catalog rule against the snapshot and applies the
// override set to the raw results. It is a pure function of its arguments:
// identical inputs always produce an identical Evaluation.
//
// A failing or panicking predicate never aborts the run; it degrades to a
// single ERROR result with severity forced to blocker, so an engine fault is
// never mistaken for a cosmetic warning.
func Evaluate(snap CaseSnapshot, catalog []Rule, overrides []override.Override, now time.Time) Evaluation {
	byRule := make(map[string]override.Override, len(overrides))
	for _, ovr := range overrides {
		if ovr.CaseID == snap.CaseID && ovr.RuleID != "" && ovr.Reason != "" {
			byRule[ovr.RuleID] = ovr
		}
	}

	results := make([]RuleResult, 0, len(catalog))
	for _, rule := range catalog {
		result := evaluateRule(rule, snap, now)

		// Overrides only transform failing output; they never touch the
		// catalog or the snapshot. An ERROR result is overridable the same
		// way as an ordinary failure.
		if ovr, ok := byRule[rule.ID]; ok && !result.OK {
			result.Status = StatusPassWithOverride
			result.OK = true
			result.Override = &OverrideRef{
				Reason:       ovr.Reason,
				OverriddenBy: ovr.OverriddenBy,
				Timestamp:    ovr.Timestamp,
			}
		}

		results = append(results, result)
	}

	hasBlockers := false
	hasWarnings := false
	for _, r := range results {
		if r.OK {
			continue
		}
		switch r.Severity {
		case SeverityBlocker:
			hasBlockers = true
		case SeverityWarning:
			hasWarnings = true
		}
	}

	status := CaseGreen
	switch {
	case hasBlockers:
		status = CaseRed
	case hasWarnings:
		status = CaseAmber
	}
	canProceed := status == CaseGreen

	return Evaluation{
		CaseID:     snap.CaseID,
		Timestamp:  now,
		Status:     status,
		CanProceed: canProceed,
		Results:    results,
		Actions: Actions{
			SubmitAllowed:    canProceed,
			OverrideRequired: hasBlockers || hasWarnings,
		},
		Summary: summarize(results),
	}
}

// evaluateRule computes one rule in isolation. Panics inside a predicate are
// recovered and reported as ERROR results on the named return value.
func evaluateRule(rule Rule, snap CaseSnapshot, now time.Time) (result RuleResult) {
	result = RuleResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Severity: rule.Severity,
		Status:   StatusPass,
		OK:       true,
	}

	defer func() {
		if r := recover(); r != nil {
			result = errorResult(rule, fmt.Sprintf("evaluation panic: %v", r))
		}
	}()

	if rule.Predicate == nil {
		return errorResult(rule, "rule has no predicate")
	}

	violated, err := rule.Predicate(snap, now)
	if err != nil {
		return errorResult(rule, fmt.Sprintf("evaluation error: %v", err))
	}

	if violated {
		result.OK = false
		result.Message = rule.Message
		result.Remedy = rule.Remedy
		if rule.Severity == SeverityWarning {
			result.Status = StatusWarn
		} else {
			result.Status = StatusFail
		}
	}

	return result
}

func errorResult(rule Rule, message string) RuleResult {
	return RuleResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Severity: SeverityBlocker,
		Status:   StatusError,
		OK:       false,
		Message:  message,
	}
}

func summarize(results []RuleResult) Summary {
	s := Summary{TotalRules: len(results)}
	for _, r := range results {
		if r.OK {
			s.Passed++
		} else {
			switch r.Severity {
			case SeverityWarning:
				s.Warnings++
			case SeverityBlocker:
				s.Blockers++
			}
		}
		switch r.Status {
		case StatusError:
			s.Errors++
		case StatusPassWithOverride:
			s.Overrides++
		}
	}
	return s
}
