package rules

import (
	"strings"
	"time"
)

// Predicate reports whether the rule's violation condition holds for the
// snapshot. A non-nil error marks the rule as failed internally rather than
// violated.
type Predicate func(snap CaseSnapshot, now time.Time) (bool, error)

// Rule is one immutable catalog entry.
type Rule struct {
	ID        string
	Name      string
	Severity  Severity
	Message   string
	Remedy    string
	Predicate Predicate
}

const (
	docStatusReceived = "RECEIVED"

	docTypePassport   = "passport"
	docTypeBirthCertP = "birth_cert_PL"

	// requiredAttachments is the number of checklist slots that must be
	// linked before the application can be submitted.
	requiredAttachments = 10

	// maxProcessingDays is the timeline threshold before a case is flagged
	// for review.
	maxProcessingDays = 180
)

// validPipelineStates are the states in which a case may be submitted.
var validPipelineStates = map[string]bool{
	"OBY_SUBMITTABLE": true,
	"USC_READY":       true,
}

// Catalog returns the fixed, ordered rule set. Each predicate is a named
// function so it can be unit-tested and can fail in isolation without taking
// the rest of the catalog down.
func Catalog() []Rule {
	return []Rule{
		{
			ID:        "USC.STATUS.REG",
			Name:      "USC Registration Status",
			Severity:  SeverityWarning,
			Message:   "USC birth act not yet registered (umiejscowienie pending)",
			Remedy:    "Complete USC registration process at Polish consulate or USC office",
			Predicate: birthActUnregistered,
		},
		{
			ID:        "DOC.TRANSLATION.REQUIRED",
			Name:      "Document Translation Requirements",
			Severity:  SeverityWarning,
			Message:   "Some foreign vital documents lack sworn Polish translation",
			Remedy:    "Obtain sworn Polish translations for all foreign documents",
			Predicate: foreignDocsUntranslated,
		},
		{
			ID:        "IDENTITY.NAMES.CONSISTENCY",
			Name:      "Name Consistency Check",
			Severity:  SeverityWarning,
			Message:   "Surname mismatch between birth and current documents without correction note",
			Remedy:    "Provide sprostowanie (correction) note or legal name change documentation",
			Predicate: surnameInconsistent,
		},
		{
			ID:        "ATTACHMENTS.COMPLETE",
			Name:      "OBY Attachments Completeness",
			Severity:  SeverityWarning,
			Message:   "Not all required OBY attachments (1-10) are linked",
			Remedy:    "Link all 10 required attachments to OBY application before submission",
			Predicate: attachmentsIncomplete,
		},
		{
			ID:        "DOC.PASSPORT.REQUIRED",
			Name:      "Valid Passport Required",
			Severity:  SeverityBlocker,
			Message:   "No valid passport document found in case files",
			Remedy:    "Upload a clear copy of valid passport document",
			Predicate: passportMissing,
		},
		{
			ID:        "LINEAGE.POLISH.PROOF",
			Name:      "Polish Lineage Proof",
			Severity:  SeverityBlocker,
			Message:   "Polish birth certificate or lineage proof missing",
			Remedy:    "Provide Polish birth certificate of Polish ancestor or equivalent proof",
			Predicate: lineageProofMissing,
		},
		{
			ID:        "CASE.STATE.VALID",
			Name:      "Case State Validation",
			Severity:  SeverityBlocker,
			Message:   "Case is not in a submittable state",
			Remedy:    "Complete all prerequisite steps before attempting submission",
			Predicate: pipelineStateInvalid,
		},
		{
			ID:        "CLIENT.DATA.COMPLETE",
			Name:      "Client Data Completeness",
			Severity:  SeverityWarning,
			Message:   "Client information is incomplete or invalid",
			Remedy:    "Ensure client name and email are properly filled out",
			Predicate: clientDataIncomplete,
		},
		{
			ID:        "DOCS.FOREIGN.STATUS",
			Name:      "Foreign Document Processing",
			Severity:  SeverityWarning,
			Message:   "Some foreign documents are not yet processed",
			Remedy:    "Complete processing of all foreign vital documents",
			Predicate: foreignDocsUnprocessed,
		},
		{
			ID:        "PROCESSING.TIMELINE",
			Name:      "Processing Timeline Check",
			Severity:  SeverityWarning,
			Message:   "Case has been in process for more than 6 months",
			Remedy:    "Review case status and consider escalating if needed",
			Predicate: processingOverdue,
		},
	}
}

func birthActUnregistered(snap CaseSnapshot, _ time.Time) (bool, error) {
	return !snap.BirthActRegistered, nil
}

func foreignDocsUntranslated(snap CaseSnapshot, _ time.Time) (bool, error) {
	for _, doc := range snap.Documents {
		if doc.IsForeign && !doc.HasSwornTranslation {
			return true, nil
		}
	}
	return false, nil
}

func surnameInconsistent(snap CaseSnapshot, _ time.Time) (bool, error) {
	return snap.CurrentSurname != snap.BirthSurname && !snap.HasCorrectionNote, nil
}

func attachmentsIncomplete(snap CaseSnapshot, _ time.Time) (bool, error) {
	linked := 0
	for _, att := range snap.Attachments {
		if att.Linked {
			linked++
		}
	}
	return linked < requiredAttachments, nil
}

func passportMissing(snap CaseSnapshot, _ time.Time) (bool, error) {
	for _, doc := range snap.Documents {
		if doc.Type == docTypePassport && doc.Status == docStatusReceived {
			return false, nil
		}
	}
	return true, nil
}

func lineageProofMissing(snap CaseSnapshot, _ time.Time) (bool, error) {
	for _, doc := range snap.Documents {
		if doc.Type == docTypeBirthCertP {
			return false, nil
		}
	}
	return true, nil
}

func pipelineStateInvalid(snap CaseSnapshot, _ time.Time) (bool, error) {
	return !validPipelineStates[snap.PipelineState], nil
}

func clientDataIncomplete(snap CaseSnapshot, _ time.Time) (bool, error) {
	if snap.ClientName == "" || snap.ClientEmail == "" {
		return true, nil
	}
	return len(strings.TrimSpace(snap.ClientName)) < 3, nil
}

func foreignDocsUnprocessed(snap CaseSnapshot, _ time.Time) (bool, error) {
	for _, doc := range snap.Documents {
		if doc.IsForeign && doc.Status != docStatusReceived {
			return true, nil
		}
	}
	return false, nil
}

func processingOverdue(snap CaseSnapshot, now time.Time) (bool, error) {
	if snap.CreatedAt.IsZero() {
		return false, nil
	}
	days := int(now.Sub(snap.CreatedAt).Hours() / 24)
	return days > maxProcessingDays, nil
}
