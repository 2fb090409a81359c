package guard

import (
	"context"
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
)

// IdempotencyGuard rejects a repeated Idempotency-Key within a retention
// window. Keys are scoped by caller so two users cannot collide.
type IdempotencyGuard struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	retain time.Duration
	now    func() time.Time
}

// NewIdempotencyGuard creates a guard that remembers keys for retain.
// A non-positive retain keeps keys for the process lifetime.
func NewIdempotencyGuard(retain time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen:   make(map[string]time.Time),
		retain: retain,
		now:    time.Now,
	}
}

// Check claims key for scope. An empty key is always allowed.
func (ig *IdempotencyGuard) Check(_ context.Context, scope, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	ig.sweep(now)

	k := scope + "|" + key
	if _, dup := ig.seen[k]; dup {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[k] = now
	return domain.GuardResult{Allowed: true}
}

// Release forgets a claimed key so a failed request can be retried.
func (ig *IdempotencyGuard) Release(scope, key string) {
	if key == "" {
		return
	}
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, scope+"|"+key)
}

// sweep drops keys older than the retention window. Caller holds ig.mu.
func (ig *IdempotencyGuard) sweep(now time.Time) {
	if ig.retain <= 0 {
		return
	}
	for k, at := range ig.seen {
		if now.Sub(at) > ig.retain {
			delete(ig.seen, k)
		}
	}
}
