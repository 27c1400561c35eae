package request

import (
	"context"
	"sync"
)

// InMemoryStore keeps request records in per-collection maps.
type InMemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection]map[string]ChangeRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		collections: map[Collection]map[string]ChangeRequest{
			CollectionPending:  {},
			CollectionApproved: {},
			CollectionDeclined: {},
		},
	}
}

func (s *InMemoryStore) Get(_ context.Context, col Collection, id string) (*ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.collections[col][id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := req
	return &copy, nil
}

func (s *InMemoryStore) Put(_ context.Context, col Collection, req *ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[col][req.ID] = *req
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, col Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[col][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[col], id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, col Collection) ([]*ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ChangeRequest, 0, len(s.collections[col]))
	for _, req := range s.collections[col] {
		copy := req
		out = append(out, &copy)
	}
	return out, nil
}
