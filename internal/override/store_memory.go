package override

import (
	"context"
	"sync"
)

// InMemoryStore keeps overrides in a per-case slice. Suitable for tests and
// single-process deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	overrides map[string][]Override
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{overrides: make(map[string][]Override)}
}

func (s *InMemoryStore) Upsert(_ context.Context, ovr Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.overrides[ovr.CaseID]
	for i := range entries {
		if entries[i].RuleID == ovr.RuleID {
			entries[i] = ovr
			return nil
		}
	}
	s.overrides[ovr.CaseID] = append(entries, ovr)
	return nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, caseID string) ([]Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Override{}, s.overrides[caseID]...), nil
}
