package auth

import (
	"github.com/cissero/platform/internal/domain"
)

// AdminAction is an operation one admin performs on another admin record.
type AdminAction string

const (
	ActionCreateAdmin AdminAction = "create"
	ActionUpdateAdmin AdminAction = "update"
	ActionElevate     AdminAction = "elevate" // change role or permissions
	ActionDeleteAdmin AdminAction = "delete"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []domain.AdminRole {
	return []domain.AdminRole{domain.RoleModerator, domain.RoleAdmin, domain.RoleSuperAdmin}
}

// CanManageAdmins reports whether actor has admin-management rights.
func CanManageAdmins(actor *domain.AdminUser) bool {
	if actor == nil {
		return false
	}
	return actor.Role == domain.RoleSuperAdmin || actor.HasPermission(domain.PermManageAdmins)
}

// CanManage is the single authorization rule for admin management. target is
// nil for creation. It returns nil when the action is allowed.
func CanManage(actor, target *domain.AdminUser, action AdminAction) error {
	if actor == nil {
		return domain.ErrUnauthorized("admin session required")
	}
	if !actor.Active {
		return domain.ErrForbidden("admin account is inactive")
	}

	self := target != nil && target.ID == actor.ID

	switch action {
	case ActionCreateAdmin:
		if !CanManageAdmins(actor) {
			return domain.ErrForbidden("you do not have permission to create admins")
		}
	case ActionUpdateAdmin:
		if !self && !CanManageAdmins(actor) {
			return domain.ErrForbidden("you can only edit your own account")
		}
	case ActionElevate:
		if !CanManageAdmins(actor) {
			return domain.ErrForbidden("you do not have permission to change roles or permissions")
		}
	case ActionDeleteAdmin:
		if target == nil {
			return domain.ErrValidation("delete requires a target admin")
		}
		if self {
			return domain.ErrForbidden("you cannot delete your own account")
		}
		if target.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
			return domain.ErrForbidden("only a super admin can delete a super admin")
		}
		if !CanManageAdmins(actor) {
			return domain.ErrForbidden("you do not have permission to delete admins")
		}
	default:
		return domain.ErrValidation("unknown admin action: " + string(action))
	}
	return nil
}
