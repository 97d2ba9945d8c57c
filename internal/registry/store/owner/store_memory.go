package owner

import (
	"context"
	"sync"

	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
)

// Error Contract:
//   - InitOwner persists configured on first call and reports created=true
//   - later calls return the persisted owner and ignore configured
//   - a first call with an empty configured account fails with
//     CodeInvalidInput; nothing is persisted

// InMemoryStore holds the owner for the lifetime of the process.
type InMemoryStore struct {
	mu    sync.Mutex
	owner id.AccountID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) InitOwner(_ context.Context, configured id.AccountID) (id.AccountID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.owner.IsNil() {
		return s.owner, false, nil
	}
	if configured.IsNil() {
		return "", false, errMissingOwner
	}
	s.owner = configured
	return s.owner, true, nil
}

var errMissingOwner = dErrors.New(dErrors.CodeInvalidInput, "registry owner is not initialized and none was configured")
