package domain

import (
	"slices"
	"time"
)

// AdminRole is the role of an admin console account.
type AdminRole string

const (
	RoleModerator  AdminRole = "moderator"
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

// Valid reports whether r is a known admin role.
func (r AdminRole) Valid() bool {
	return r == RoleModerator || r == RoleAdmin || r == RoleSuperAdmin
}

// Admin capabilities.
const (
	PermManageAdmins = "manage_admins"
	PermManageEvents = "manage_events"
	PermViewReports  = "view_reports"
	PermModerateChat = "moderate_chat"
)

// AdminUser represents an admin console account.
type AdminUser struct {
	ID           string     `json:"id" toml:"id"`
	Username     string     `json:"username" toml:"username"`
	Email        string     `json:"email" toml:"email"`
	Name         string     `json:"name" toml:"name"`
	Role         AdminRole  `json:"role" toml:"role"`
	Permissions  []string   `json:"permissions" toml:"permissions"`
	Active       bool       `json:"active" toml:"active"`
	PasswordHash string     `json:"-" toml:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" toml:"-"`
	CreatedAt    time.Time  `json:"createdAt" toml:"-"`
}

// HasPermission reports whether the admin holds the capability.
func (a *AdminUser) HasPermission(perm string) bool {
	return slices.Contains(a.Permissions, perm)
}

// Clone returns a deep copy of the admin.
func (a AdminUser) Clone() AdminUser {
	c := a
	c.Permissions = slices.Clone(a.Permissions)
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return c
}
