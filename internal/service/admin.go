package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/docstore"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminService manages admin console accounts.
type AdminService struct {
	admins  repository.AdminRepository
	docs    docstore.Store
	jwtMgr  *auth.JWTManager
	lockout *guard.LoginLockout
	logger  *slog.Logger
	cost    int
	now     func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(
	admins repository.AdminRepository,
	docs docstore.Store,
	jwtMgr *auth.JWTManager,
	lockout *guard.LoginLockout,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		admins:  admins,
		docs:    docs,
		jwtMgr:  jwtMgr,
		lockout: lockout,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
}

// AdminAuthResult is returned on successful admin login.
type AdminAuthResult struct {
	Token string            `json:"token"`
	Admin *domain.AdminUser `json:"admin"`
}

// Login authenticates an admin and returns an admin-realm JWT.
func (s *AdminService) Login(ctx context.Context, input LoginInput) (*AdminAuthResult, error) {
	realm := string(auth.RealmAdmin)
	if err := s.lockout.CheckLocked(realm, input.Username); err != nil {
		return nil, err
	}

	admin := s.admins.FindByUsername(input.Username)
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
		s.lockout.RecordAttempt(realm, input.Username, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if !admin.Active {
		return nil, domain.ErrForbidden("admin account is inactive")
	}
	s.lockout.RecordAttempt(realm, input.Username, true)

	now := s.now().UTC()
	admin.LastLogin = &now
	if err := s.admins.Update(*admin); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, docstore.CollectionAdmins, admin.ID, map[string]any{"lastLogin": now}); err != nil {
		s.logger.Debug("stamp last login", "admin_id", admin.ID, "error", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmAdmin, admin.ID, admin.Username, string(admin.Role))
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &AdminAuthResult{Token: token, Admin: admin}, nil
}

// List returns every admin account.
func (s *AdminService) List() []domain.AdminUser {
	return s.admins.List()
}

// Get returns one admin or NOT_FOUND.
func (s *AdminService) Get(id string) (*domain.AdminUser, error) {
	a := s.admins.FindByID(id)
	if a == nil {
		return nil, domain.ErrNotFound("admin", id)
	}
	return a, nil
}

// CreateAdminInput holds the fields of a new admin account.
type CreateAdminInput struct {
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Password    string           `json:"password"`
	Role        domain.AdminRole `json:"role"`
	Permissions []string         `json:"permissions"`
	Active      *bool            `json:"active,omitempty"`
}

// Create adds an admin account on behalf of actor.
func (s *AdminService) Create(ctx context.Context, actor *domain.AdminUser, input CreateAdminInput) (*domain.AdminUser, error) {
	if err := auth.CanManage(actor, nil, auth.ActionCreateAdmin); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.RoleModerator
	}
	if err := s.checkRole(actor, input.Role); err != nil {
		return nil, err
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < MinPasswordLength {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if err := s.checkUnique("", input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	admin := domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		Permissions:  slices.Clone(input.Permissions),
		Active:       active,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.admins.Insert(admin); err != nil {
		return nil, err
	}
	s.persist(ctx, admin)

	s.logger.Info("admin created", "admin_id", admin.ID, "role", admin.Role, "by", actor.ID)
	return &admin, nil
}

// UpdateAdminInput carries the fields of an admin update. Nil fields are left unchanged.
type UpdateAdminInput struct {
	Username    *string           `json:"username,omitempty"`
	Email       *string           `json:"email,omitempty"`
	Name        *string           `json:"name,omitempty"`
	Password    *string           `json:"password,omitempty"`
	Role        *domain.AdminRole `json:"role,omitempty"`
	Permissions *[]string         `json:"permissions,omitempty"`
	Active      *bool             `json:"active,omitempty"`
}

// elevates reports whether the update changes the target's role, permissions
// or active flag.
func (in UpdateAdminInput) elevates(target *domain.AdminUser) bool {
	if in.Role != nil && *in.Role != target.Role {
		return true
	}
	if in.Permissions != nil && !sameSet(*in.Permissions, target.Permissions) {
		return true
	}
	return in.Active != nil && *in.Active != target.Active
}

// Update edits an admin account on behalf of actor.
func (s *AdminService) Update(ctx context.Context, actor *domain.AdminUser, id string, input UpdateAdminInput) (*domain.AdminUser, error) {
	target := s.admins.FindByID(id)
	if target == nil {
		return nil, domain.ErrNotFound("admin", id)
	}
	if err := auth.CanManage(actor, target, auth.ActionUpdateAdmin); err != nil {
		return nil, err
	}
	if input.elevates(target) {
		if err := auth.CanManage(actor, target, auth.ActionElevate); err != nil {
			return nil, err
		}
	}

	next := target.Clone()
	if input.Username != nil {
		if err := domain.ValidateUsername(*input.Username); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		next.Username = *input.Username
	}
	if input.Email != nil {
		if err := domain.ValidateEmail(*input.Email); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		next.Email = *input.Email
	}
	if input.Name != nil {
		next.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil && *input.Role != target.Role {
		if err := s.checkRole(actor, *input.Role); err != nil {
			return nil, err
		}
		next.Role = *input.Role
	}
	if input.Permissions != nil {
		next.Permissions = slices.Clone(*input.Permissions)
	}
	if input.Active != nil {
		next.Active = *input.Active
	}
	if input.Password != nil {
		if len(*input.Password) < MinPasswordLength {
			return nil, domain.ErrValidation("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
		if err != nil {
			return nil, domain.ErrInternal("hash password", err)
		}
		next.PasswordHash = string(hash)
	}

	if err := s.checkUnique(id, next.Username, next.Email); err != nil {
		return nil, err
	}
	if err := s.admins.Update(next); err != nil {
		return nil, err
	}
	s.persist(ctx, next)

	s.logger.Info("admin updated", "admin_id", id, "by", actor.ID)
	return &next, nil
}

// Delete removes an admin account on behalf of actor.
func (s *AdminService) Delete(ctx context.Context, actor *domain.AdminUser, id string) error {
	target := s.admins.FindByID(id)
	if target == nil {
		return domain.ErrNotFound("admin", id)
	}
	if err := auth.CanManage(actor, target, auth.ActionDeleteAdmin); err != nil {
		return err
	}
	if err := s.admins.Delete(id); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, docstore.CollectionAdmins, id); err != nil {
		s.logger.Warn("delete admin document", "admin_id", id, "error", err)
	}

	s.logger.Info("admin deleted", "admin_id", id, "by", actor.ID)
	return nil
}

// checkRole validates a role and keeps super_admin grants to super admins.
func (s *AdminService) checkRole(actor *domain.AdminUser, role domain.AdminRole) error {
	if !role.Valid() {
		return domain.ErrValidation("unknown role: " + string(role))
	}
	if role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden("only a super admin can grant the super_admin role")
	}
	return nil
}

// checkUnique rejects a username or email held by an admin other than selfID.
func (s *AdminService) checkUnique(selfID, username, email string) error {
	if a := s.admins.FindByUsername(username); a != nil && a.ID != selfID {
		return domain.ErrConflict("username already taken")
	}
	if a := s.admins.FindByEmail(email); a != nil && a.ID != selfID {
		return domain.ErrConflict("email already in use")
	}
	return nil
}

func (s *AdminService) persist(ctx context.Context, a domain.AdminUser) {
	if err := s.docs.Set(ctx, docstore.CollectionAdmins, a.ID, a); err != nil {
		s.logger.Warn("persist admin", "admin_id", a.ID, "error", err)
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
