package override

import "context"

// Store persists overrides keyed by (case id, rule id). Upsert replaces any
// existing entry for the pair; ListByCase returns only the given case's
// entries and skips records it cannot decode.
type Store interface {
	Upsert(ctx context.Context, ovr Override) error
	ListByCase(ctx context.Context, caseID string) ([]Override, error)
}
