package casefile

import (
	"context"
	"errors"
	"time"

	"casegate/internal/rules"
	dErrors "casegate/pkg/domain-errors"
)

// Snapshot projects a raw case document into the read-only view the rule
// evaluator consumes. Sparse documents get the same fallbacks the portal
// applied: surname UNKNOWN, birth surname defaulting to the current surname,
// and a default in-flight pipeline state.
func Snapshot(caseID string, doc Document) rules.CaseSnapshot {
	client := subDoc(doc, "client")

	surname := str(client, "surname")
	if surname == "" {
		surname = "UNKNOWN"
	}
	birthSurname := str(client, "birthSurname")
	if birthSurname == "" {
		birthSurname = surname
	}

	state := str(doc, "state")
	if state == "" {
		state = "USC_IN_FLIGHT"
	}

	return rules.CaseSnapshot{
		CaseID:             caseID,
		ClientName:         str(client, "name"),
		ClientEmail:        str(client, "email"),
		CurrentSurname:     surname,
		BirthSurname:       birthSurname,
		HasCorrectionNote:  boolean(doc, "hasCorrectionNote"),
		PipelineState:      state,
		CreatedAt:          date(doc, "createdAt"),
		BirthActRegistered: boolean(doc, "uscRegistered"),
		Documents:          documents(doc),
		Attachments:        attachments(doc),
	}
}

// SnapshotProvider adapts the document store to the evaluator's snapshot
// source.
type SnapshotProvider struct {
	store Store
}

func NewSnapshotProvider(store Store) *SnapshotProvider {
	return &SnapshotProvider{store: store}
}

func (p *SnapshotProvider) Snapshot(ctx context.Context, caseID string) (rules.CaseSnapshot, error) {
	doc, err := p.store.GetCase(ctx, caseID)
	if errors.Is(err, ErrNotFound) {
		return rules.CaseSnapshot{}, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	if err != nil {
		return rules.CaseSnapshot{}, dErrors.Wrap(dErrors.CodeInternal, "load case", err)
	}
	return Snapshot(caseID, doc), nil
}

func documents(doc Document) []rules.DocumentRecord {
	raw, _ := doc["documents"].([]any)
	out := make([]rules.DocumentRecord, 0, len(raw))
	for _, item := range raw {
		d, ok := item.(Document)
		if !ok {
			continue
		}
		out = append(out, rules.DocumentRecord{
			Type:                str(d, "type"),
			Status:              str(d, "status"),
			HasSwornTranslation: boolean(d, "hasTranslation"),
			IsForeign:           boolean(d, "isForeign"),
		})
	}
	return out
}

func attachments(doc Document) []rules.Attachment {
	raw, _ := doc["attachments"].([]any)
	out := make([]rules.Attachment, 0, len(raw))
	for _, item := range raw {
		a, ok := item.(Document)
		if !ok {
			continue
		}
		id := 0
		if n, ok := a["id"].(float64); ok {
			id = int(n)
		}
		out = append(out, rules.Attachment{
			ID:     id,
			Name:   str(a, "name"),
			Linked: boolean(a, "linked"),
		})
	}
	return out
}

func subDoc(doc Document, key string) Document {
	if sub, ok := doc[key].(Document); ok {
		return sub
	}
	return nil
}

func str(doc Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func boolean(doc Document, key string) bool {
	v, _ := doc[key].(bool)
	return v
}

// date accepts both date-only and RFC 3339 timestamps, which both occur in
// portal case files.
func date(doc Document, key string) time.Time {
	raw := str(doc, key)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}
