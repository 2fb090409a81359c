package admin

import (
	"net/http"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/handler"
	"github.com/cissero/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// AdminsHandler manages admin console accounts.
type AdminsHandler struct {
	svc *service.AdminService
}

// NewAdminsHandler creates a new AdminsHandler.
func NewAdminsHandler(svc *service.AdminService) *AdminsHandler {
	return &AdminsHandler{svc: svc}
}

// Me handles GET /admin/me.
func (h *AdminsHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	if actor == nil {
		handler.RespondError(w, domain.ErrUnauthorized("admin session required"))
		return
	}
	handler.RespondJSON(w, http.StatusOK, actor)
}

// List handles GET /admin/admins.
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	handler.RespondJSON(w, http.StatusOK, h.svc.List())
}

// Get handles GET /admin/admins/{id}.
func (h *AdminsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, a)
}

// Create handles POST /admin/admins.
func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateAdminInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	a, err := h.svc.Create(r.Context(), actor, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, a)
}

// Update handles PATCH /admin/admins/{id}.
func (h *AdminsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateAdminInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	a, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /admin/admins/{id}.
func (h *AdminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	if err := h.svc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
