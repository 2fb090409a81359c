package admin

import (
	"net/http"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/handler"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventAdminHandler drives the event lifecycle from the admin console.
type EventAdminHandler struct {
	engine      *lifecycle.Engine
	predictions *service.PredictionService
}

// NewEventAdminHandler creates a new EventAdminHandler.
func NewEventAdminHandler(engine *lifecycle.Engine, predictions *service.PredictionService) *EventAdminHandler {
	return &EventAdminHandler{engine: engine, predictions: predictions}
}

// List handles GET /admin/events.
func (h *EventAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := handler.FilterFromQuery(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, h.engine.List(filter))
}

// Create handles POST /admin/events.
func (h *EventAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input lifecycle.CreateInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}
	ev, err := h.engine.Create(r.Context(), auth.SessionFromContext(r.Context()), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, ev)
}

// Update handles PATCH /admin/events/{id}.
func (h *EventAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.EventPatch
	if err := handler.DecodeJSON(r, &patch); err != nil {
		handler.RespondBadBody(w)
		return
	}
	ev, err := h.engine.Update(r.Context(), chi.URLParam(r, "id"), patch)
	respondEvent(w, ev, err)
}

// Delete handles DELETE /admin/events/{id}.
func (h *EventAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// Approve handles POST /admin/events/{id}/approve.
func (h *EventAdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ev, err := h.engine.Approve(r.Context(), chi.URLParam(r, "id"))
	respondEvent(w, ev, err)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /admin/events/{id}/reject.
func (h *EventAdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondBadBody(w)
		return
	}
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	ev, err := h.engine.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason, actor)
	respondEvent(w, ev, err)
}

// Assign handles POST /admin/events/{id}/assign: the calling admin takes the event.
func (h *EventAdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	ev, err := h.engine.Assign(r.Context(), chi.URLParam(r, "id"), actor)
	respondEvent(w, ev, err)
}

// Complete handles POST /admin/events/{id}/complete.
func (h *EventAdminHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ev, err := h.engine.Complete(r.Context(), chi.URLParam(r, "id"))
	respondEvent(w, ev, err)
}

// Undo handles POST /admin/events/{id}/undo. With nothing to undo it answers
// {"event": null}.
func (h *EventAdminHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ev, err := h.engine.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]*domain.Event{"event": ev})
}

// History handles GET /admin/events/{id}/history.
func (h *EventAdminHandler) History(w http.ResponseWriter, r *http.Request) {
	handler.RespondJSON(w, http.StatusOK, h.engine.History(chi.URLParam(r, "id")))
}

type settleRequest struct {
	WinnerID string `json:"winnerId"`
}

// Settle handles POST /admin/events/{id}/settle.
func (h *EventAdminHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondBadBody(w)
		return
	}
	s, err := h.predictions.SettleEvent(r.Context(), chi.URLParam(r, "id"), req.WinnerID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, s)
}

// Predictions handles GET /admin/events/{id}/predictions.
func (h *EventAdminHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	preds, err := h.predictions.EventPredictions(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, preds)
}

func respondEvent(w http.ResponseWriter, ev *domain.Event, err error) {
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, ev)
}
