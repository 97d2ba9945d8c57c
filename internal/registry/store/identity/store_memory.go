package identity

import (
	"context"
	"fmt"
	"sync"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	"verireg/pkg/platform/sentinel"
)

// Error Contract:
//   - FindByAccount and Execute return sentinel.ErrNotFound (wrapped) when no
//     record exists for the account
//   - Execute returns the validate callback's error unchanged
//   - records are copied on the way in and out; callers never share memory
//     with the store

// InMemoryStore keeps identity records in a map for tests and dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.AccountID]*models.Identity
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.AccountID]*models.Identity)}
}

// Save inserts or fully replaces the record for identity.Account.
func (s *InMemoryStore) Save(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identity.Account] = identity.Clone()
	return nil
}

func (s *InMemoryStore) FindByAccount(_ context.Context, account id.AccountID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[account]
	if !ok {
		return nil, fmt.Errorf("identity %s: %w", account, sentinel.ErrNotFound)
	}
	return rec.Clone(), nil
}

// Execute runs validate then mutate on the stored record under the write
// lock. mutate only runs when validate succeeds.
func (s *InMemoryStore) Execute(_ context.Context, account id.AccountID, validate func(*models.Identity) error, mutate func(*models.Identity)) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[account]
	if !ok {
		return nil, fmt.Errorf("identity %s: %w", account, sentinel.ErrNotFound)
	}
	working := rec.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.records[account] = working
	return working.Clone(), nil
}
