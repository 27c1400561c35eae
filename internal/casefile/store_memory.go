package casefile

import (
	"context"
	"sync"
)

// InMemoryStore keeps case and tree documents in maps. Used in tests and
// single-process setups.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[string]Document
	trees map[string]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases: make(map[string]Document),
		trees: make(map[string]Document),
	}
}

func (s *InMemoryStore) GetCase(_ context.Context, caseID string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.cases[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	return Merge(doc, nil), nil
}

func (s *InMemoryStore) PutCase(_ context.Context, caseID string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[caseID] = Merge(doc, nil)
	return nil
}

func (s *InMemoryStore) GetTree(_ context.Context, caseID string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.trees[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	return Merge(doc, nil), nil
}

func (s *InMemoryStore) PutTree(_ context.Context, caseID string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[caseID] = Merge(doc, nil)
	return nil
}
