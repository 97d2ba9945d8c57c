package verifier

import (
	"context"
	"slices"
	"sync"

	id "verireg/pkg/domain"
)

// Error Contract:
//   - Add and Remove are idempotent and report whether the set changed
//   - Contains never fails for an absent account; it returns false
//   - List returns accounts in ascending order

// InMemoryStore keeps the verifier set in a map.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[id.AccountID]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{members: make(map[id.AccountID]struct{})}
}

func (s *InMemoryStore) Add(_ context.Context, account id.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[account]; ok {
		return false, nil
	}
	s.members[account] = struct{}{}
	return true, nil
}

func (s *InMemoryStore) Remove(_ context.Context, account id.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[account]; !ok {
		return false, nil
	}
	delete(s.members, account)
	return true, nil
}

func (s *InMemoryStore) Contains(_ context.Context, account id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[account]
	return ok, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]id.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.AccountID, 0, len(s.members))
	for account := range s.members {
		out = append(out, account)
	}
	slices.Sort(out)
	return out, nil
}
