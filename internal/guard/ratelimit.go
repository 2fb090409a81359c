package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
)

// RateLimiter is a per-key sliding window limiter. Chat posts and private
// messages are keyed by user id.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter allowing limit hits per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check records a hit for key and reports whether it fits in the window.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows[key] = valid
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("slow down: at most %d messages per %s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	rl.windows[key] = append(valid, now)
	return domain.GuardResult{Allowed: true}
}

// Allow is Check as an error: nil when allowed, RATE_LIMITED otherwise.
func (rl *RateLimiter) Allow(ctx context.Context, key string) error {
	if res := rl.Check(ctx, key); !res.Allowed {
		return domain.ErrRateLimited(res.Reason)
	}
	return nil
}
