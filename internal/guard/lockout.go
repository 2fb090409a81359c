package guard

import (
	"strings"
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// LoginLockout counts failed logins per realm and username and locks the
// account after MaxAttempts failures inside LockoutWindow.
type LoginLockout struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLoginLockout creates a lockout tracker with the package defaults.
func NewLoginLockout() *LoginLockout {
	return &LoginLockout{
		failures: make(map[string][]time.Time),
		max:      MaxAttempts,
		window:   LockoutWindow,
		now:      time.Now,
	}
}

func lockoutKey(realm, username string) string {
	return realm + ":" + strings.ToLower(username)
}

// RecordAttempt notes a login outcome. Success clears earlier failures.
func (l *LoginLockout) RecordAttempt(realm, username string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockoutKey(realm, username)
	if success {
		delete(l.failures, key)
		return
	}
	l.failures[key] = append(l.recent(key), l.now())
}

// CheckLocked returns ACCOUNT_LOCKED if the account has too many recent failures.
func (l *LoginLockout) CheckLocked(realm, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockoutKey(realm, username)
	recent := l.recent(key)
	if len(recent) == 0 {
		delete(l.failures, key)
	} else {
		l.failures[key] = recent
	}
	if len(recent) >= l.max {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}

// recent returns the failures of key inside the window. Caller holds l.mu.
func (l *LoginLockout) recent(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	var out []time.Time
	for _, t := range l.failures[key] {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
