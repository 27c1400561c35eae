// Package casefile models the externally-owned case and family-tree
// documents. This service only reads them for evaluation and merge-patches
// them when an approved change request is applied.
package casefile

import (
	"context"
	"errors"
)

// Document is a schemaless JSON object as stored by the portal.
type Document = map[string]any

// ErrNotFound is returned when a case or tree document does not exist.
var ErrNotFound = errors.New("document not found")

// Store reads and writes the per-case documents.
type Store interface {
	GetCase(ctx context.Context, caseID string) (Document, error)
	PutCase(ctx context.Context, caseID string, doc Document) error
	GetTree(ctx context.Context, caseID string) (Document, error)
	PutTree(ctx context.Context, caseID string, doc Document) error
}

// Merge returns a copy of dst with every key from patch shallowly
// overwritten. Neither input is mutated.
func Merge(dst Document, patch Document) Document {
	out := make(Document, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
