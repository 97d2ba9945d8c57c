// Package revocation tracks revoked access tokens by JWT id until they
// would have expired anyway.
package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	dErrors "verireg/pkg/domain-errors"
)

// InMemoryTRL is a process-local token revocation list.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewInMemoryTRL() *InMemoryTRL {
	return &InMemoryTRL{revoked: make(map[string]time.Time), now: time.Now}
}

// RevokeToken marks jti revoked for ttl.
func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.now().Add(ttl)
	return nil
}

// IsTokenRevoked reports whether jti is revoked and not yet expired.
func (t *InMemoryTRL) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.RLock()
	expiry, ok := t.revoked[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if t.now().Before(expiry) {
		return true, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// A RevokeToken may have refreshed the entry since the read above.
	if expiry, ok = t.revoked[jti]; ok && t.now().Before(expiry) {
		return true, nil
	}
	delete(t.revoked, jti)
	return false, nil
}

func validate(jti string, ttl time.Duration) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "jti is required")
	}
	if ttl <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("ttl must be positive, got %s", ttl))
	}
	return nil
}
