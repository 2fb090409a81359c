package auth

import (
	"context"

	"github.com/cissero/platform/internal/domain"
)

// Session is the identity bound to one request: at most one of Admin and User is set.
type Session struct {
	Admin *domain.AdminUser
	User  *domain.User
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool { return s != nil && s.Admin != nil }

// IsUser reports whether the session belongs to a prediction participant.
func (s *Session) IsUser() bool { return s != nil && s.User != nil }

// CurrentAdmin returns the session admin or nil.
func (s *Session) CurrentAdmin() *domain.AdminUser {
	if s == nil {
		return nil
	}
	return s.Admin
}

// CurrentUser returns the session user or nil.
func (s *Session) CurrentUser() *domain.User {
	if s == nil {
		return nil
	}
	return s.User
}

type contextKey string

const sessionKey contextKey = "auth_session"

// WithSession attaches a session to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the request session, or nil when unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
