package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cissero/platform/internal/domain"
)

// AdminLookup resolves an admin id from a token subject.
type AdminLookup interface {
	FindByID(id string) *domain.AdminUser
}

// UserLookup resolves a user id from a token subject.
type UserLookup interface {
	FindByID(id string) *domain.User
}

// AuthenticateUser returns middleware that validates user JWT tokens and
// binds the current user to the request session.
func AuthenticateUser(jwtMgr *JWTManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, RealmUser)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			user := users.FindByID(claims.Subject)
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user no longer exists")
				return
			}

			ctx := WithSession(r.Context(), &Session{User: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticateAdmin returns middleware that validates admin JWT tokens and
// binds the current admin to the request session. Inactive admins are refused.
func AuthenticateAdmin(jwtMgr *JWTManager, admins AdminLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, RealmAdmin)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			admin := admins.FindByID(claims.Subject)
			if admin == nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin no longer exists")
				return
			}
			if !admin.Active {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "admin account is inactive")
				return
			}

			ctx := WithSession(r.Context(), &Session{Admin: admin})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks the session admin's role.
func RequireRole(roles ...domain.AdminRole) func(http.Handler) http.Handler {
	roleSet := make(map[domain.AdminRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := SessionFromContext(r.Context()).CurrentAdmin()
			if admin == nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no auth context")
				return
			}
			if !roleSet[admin.Role] {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission returns middleware that lets through super admins and
// admins holding perm.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := SessionFromContext(r.Context()).CurrentAdmin()
			if admin == nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no auth context")
				return
			}
			if admin.Role != domain.RoleSuperAdmin && !admin.HasPermission(perm) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "missing permission "+perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateTokenForRealm(parts[1], realm)
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	msg = strings.ReplaceAll(msg, `"`, `'`)
	http.Error(w, `{"code":"`+code+`","message":"`+msg+`"}`, status)
}
