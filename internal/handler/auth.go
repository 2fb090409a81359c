package handler

import (
	"net/http"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/service"
)

// AuthHandler handles registration and login for both realms.
type AuthHandler struct {
	authSvc  *service.AuthService
	adminSvc *service.AdminService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, adminSvc *service.AdminService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, adminSvc: adminSvc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.authSvc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// AdminLogin handles POST /admin/auth/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.adminSvc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

func currentUser(r *http.Request) (*domain.User, error) {
	user := auth.SessionFromContext(r.Context()).CurrentUser()
	if user == nil {
		return nil, domain.ErrUnauthorized("user session required")
	}
	return user, nil
}
