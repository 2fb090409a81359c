package service

import (
	"context"
	"log/slog"
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

// StartingBalance is the points balance of a newly registered user.
const StartingBalance int64 = 1000

// MinPasswordLength applies to user and admin passwords alike.
const MinPasswordLength = 8

// AuthService handles user registration and login.
type AuthService struct {
	users   repository.UserRepository
	docs    docstore.Store
	jwtMgr  *auth.JWTManager
	lockout *guard.LoginLockout
	logger  *slog.Logger
	cost    int
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	docs docstore.Store,
	jwtMgr *auth.JWTManager,
	lockout *guard.LoginLockout,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		docs:    docs,
		jwtMgr:  jwtMgr,
		lockout: lockout,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates a user with the starting balance and logs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < MinPasswordLength {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if s.users.FindByUsername(input.Username) != nil {
		return nil, domain.ErrConflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	display := strings.TrimSpace(input.DisplayName)
	if display == "" {
		display = input.Username
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		DisplayName:  display,
		Balance:      StartingBalance,
		PasswordHash: string(hash),
		JoinedAt:     now,
		LastActive:   now,
	}
	if err := s.users.Insert(user); err != nil {
		return nil, err
	}
	if err := s.docs.Set(ctx, docstore.CollectionUsers, user.ID, user); err != nil {
		s.logger.Warn("persist registered user", "user_id", user.ID, "error", err)
	}

	return s.issue(user)
}

// LoginInput holds the login request fields for both realms.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a user-realm JWT.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	realm := string(auth.RealmUser)
	if err := s.lockout.CheckLocked(realm, input.Username); err != nil {
		return nil, err
	}

	user := s.users.FindByUsername(input.Username)
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.lockout.RecordAttempt(realm, input.Username, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	s.lockout.RecordAttempt(realm, input.Username, true)

	user.LastActive = time.Now().UTC()
	if err := s.users.Update(*user); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, docstore.CollectionUsers, user.ID, map[string]any{"lastActive": user.LastActive}); err != nil {
		s.logger.Debug("stamp last active", "user_id", user.ID, "error", err)
	}

	return s.issue(*user)
}

func (s *AuthService) issue(user domain.User) (*AuthResult, error) {
	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Username, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &AuthResult{Token: token, User: &user}, nil
}
