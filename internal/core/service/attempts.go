package service

import (
	"sync"

	"github.com/mapascal/records-system/internal/core/domain"
)

// AttemptTracker counts consecutive failed login attempts per
// (role, identifier) key. It is process-local, best-effort state for
// brute-force detection only: counts are not durable and no lockout is
// enforced here.
type AttemptTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewAttemptTracker() *AttemptTracker {
	return &AttemptTracker{counts: make(map[string]int)}
}

// Record increments the failure count for the key and returns the new value.
func (t *AttemptTracker) Record(role domain.Role, identifier string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := attemptKey(role, identifier)
	t.counts[k]++
	return t.counts[k]
}

// Reset clears the failure count for the key.
func (t *AttemptTracker) Reset(role domain.Role, identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counts, attemptKey(role, identifier))
}

func attemptKey(role domain.Role, identifier string) string {
	return string(role) + ":" + identifier
}
