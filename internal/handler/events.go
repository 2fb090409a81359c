package handler

import (
	"net/http"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/go-chi/chi/v5"
)

// EventHandler serves the public event listing and user submissions.
type EventHandler struct {
	engine *lifecycle.Engine
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(engine *lifecycle.Engine) *EventHandler {
	return &EventHandler{engine: engine}
}

// FilterFromQuery reads status, date and createdBy query parameters.
func FilterFromQuery(r *http.Request) (lifecycle.ListFilter, error) {
	q := r.URL.Query()
	f := lifecycle.ListFilter{
		Status:      domain.EventStatus(q.Get("status")),
		Date:        q.Get("date"),
		CreatedByID: q.Get("createdBy"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, domain.ErrValidation("unknown status: " + string(f.Status))
	}
	return f, nil
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.engine.List(filter))
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.engine.Get(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ev)
}

// Submit handles POST /events: a user proposes an event for approval.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input lifecycle.CreateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	ev, err := h.engine.Create(r.Context(), auth.SessionFromContext(r.Context()), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, ev)
}

// Mine handles GET /events/mine.
func (h *EventHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.engine.List(lifecycle.ListFilter{CreatedByID: user.ID}))
}
