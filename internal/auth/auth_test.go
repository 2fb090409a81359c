package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- CanManage Tests ---

func admin(id string, role domain.AdminRole, perms ...string) *domain.AdminUser {
	return &domain.AdminUser{ID: id, Username: id, Role: role, Permissions: perms, Active: true}
}

func TestCanManage(t *testing.T) {
	super := admin("s1", domain.RoleSuperAdmin)
	super2 := admin("s2", domain.RoleSuperAdmin)
	manager := admin("m1", domain.RoleAdmin, domain.PermManageAdmins)
	plain := admin("a1", domain.RoleAdmin, domain.PermManageEvents)
	mod := admin("mod1", domain.RoleModerator)
	inactive := admin("x1", domain.RoleSuperAdmin)
	inactive.Active = false

	tests := []struct {
		name     string
		actor    *domain.AdminUser
		target   *domain.AdminUser
		action   AdminAction
		wantCode string
	}{
		{"no session", nil, plain, ActionUpdateAdmin, domain.CodeUnauthorized},
		{"inactive actor", inactive, plain, ActionUpdateAdmin, domain.CodeForbidden},

		{"super creates", super, nil, ActionCreateAdmin, ""},
		{"manage_admins creates", manager, nil, ActionCreateAdmin, ""},
		{"plain admin cannot create", plain, nil, ActionCreateAdmin, domain.CodeForbidden},

		{"moderator updates self", mod, mod, ActionUpdateAdmin, ""},
		{"moderator cannot update other", mod, plain, ActionUpdateAdmin, domain.CodeForbidden},
		{"manager updates other", manager, plain, ActionUpdateAdmin, ""},

		{"moderator cannot elevate self", mod, mod, ActionElevate, domain.CodeForbidden},
		{"manager elevates self", manager, manager, ActionElevate, ""},
		{"super elevates other", super, mod, ActionElevate, ""},

		{"cannot delete self", super, super, ActionDeleteAdmin, domain.CodeForbidden},
		{"manager cannot delete super", manager, super, ActionDeleteAdmin, domain.CodeForbidden},
		{"super deletes super", super, super2, ActionDeleteAdmin, ""},
		{"manager deletes plain", manager, plain, ActionDeleteAdmin, ""},
		{"plain cannot delete moderator", plain, mod, ActionDeleteAdmin, domain.CodeForbidden},
		{"delete without target", super, nil, ActionDeleteAdmin, domain.CodeValidation},

		{"unknown action", super, nil, AdminAction("promote"), domain.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanManage(tt.actor, tt.target, tt.action)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
		})
	}
}

func TestCanManageAdmins(t *testing.T) {
	assert.False(t, CanManageAdmins(nil))
	assert.True(t, CanManageAdmins(admin("s", domain.RoleSuperAdmin)))
	assert.True(t, CanManageAdmins(admin("m", domain.RoleModerator, domain.PermManageAdmins)))
	assert.False(t, CanManageAdmins(admin("a", domain.RoleAdmin)))
}

// --- Session Tests ---

func TestSessionFromContext(t *testing.T) {
	assert.Nil(t, SessionFromContext(context.Background()))

	var nilSession *Session
	assert.Nil(t, nilSession.CurrentAdmin())
	assert.Nil(t, nilSession.CurrentUser())
	assert.False(t, nilSession.IsAdmin())

	s := &Session{User: &domain.User{ID: "u1"}}
	ctx := WithSession(context.Background(), s)
	got := SessionFromContext(ctx)
	require.NotNil(t, got)
	assert.True(t, got.IsUser())
	assert.False(t, got.IsAdmin())
	assert.Equal(t, "u1", got.CurrentUser().ID)
}

// --- Middleware Tests ---

type lookup struct {
	admins map[string]*domain.AdminUser
	users  map[string]*domain.User
}

func (l lookup) FindByID(id string) *domain.AdminUser { return l.admins[id] }

type userLookup map[string]*domain.User

func (l userLookup) FindByID(id string) *domain.User { return l[id] }

func okHandler(t *testing.T, check func(*Session)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check(SessionFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAdmin(t *testing.T) {
	mgr := NewJWTManager("secret", time.Hour, time.Hour)
	active := admin("a1", domain.RoleAdmin)
	disabled := admin("a2", domain.RoleAdmin)
	disabled.Active = false
	admins := lookup{admins: map[string]*domain.AdminUser{"a1": active, "a2": disabled}}

	mw := AuthenticateAdmin(mgr, admins)

	t.Run("valid token binds admin", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmAdmin, "a1", "a1", "admin")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw(okHandler(t, func(s *Session) {
			require.True(t, s.IsAdmin())
			assert.Equal(t, "a1", s.Admin.ID)
		})).ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		mw(okHandler(t, func(*Session) { t.Fatal("handler must not run") })).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("user token rejected", func(t *testing.T) {
		token, _ := mgr.GenerateToken(RealmUser, "a1", "", "")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw(okHandler(t, func(*Session) { t.Fatal("handler must not run") })).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive admin forbidden", func(t *testing.T) {
		token, _ := mgr.GenerateToken(RealmAdmin, "a2", "a2", "admin")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw(okHandler(t, func(*Session) { t.Fatal("handler must not run") })).ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deleted admin unauthorized", func(t *testing.T) {
		token, _ := mgr.GenerateToken(RealmAdmin, "gone", "gone", "admin")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw(okHandler(t, func(*Session) { t.Fatal("handler must not run") })).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthenticateUser(t *testing.T) {
	mgr := NewJWTManager("secret", time.Hour, time.Hour)
	users := userLookup{"u1": {ID: "u1", Username: "viewer1", Balance: 1000}}

	token, err := mgr.GenerateToken(RealmUser, "u1", "viewer1", "")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	AuthenticateUser(mgr, users)(okHandler(t, func(s *Session) {
		require.True(t, s.IsUser())
		assert.Equal(t, int64(1000), s.User.Balance)
	})).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission(t *testing.T) {
	mw := RequirePermission(domain.PermViewReports)

	run := func(a *domain.AdminUser) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if a != nil {
			r = r.WithContext(WithSession(r.Context(), &Session{Admin: a}))
		}
		w := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })).ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(nil))
	assert.Equal(t, http.StatusForbidden, run(admin("m", domain.RoleModerator)))
	assert.Equal(t, http.StatusOK, run(admin("m", domain.RoleModerator, domain.PermViewReports)))
	assert.Equal(t, http.StatusOK, run(admin("s", domain.RoleSuperAdmin)))
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(domain.RoleSuperAdmin)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(WithSession(r.Context(), &Session{Admin: admin("a", domain.RoleAdmin)}))
	w := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
