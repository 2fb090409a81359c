package admin

import (
	"net/http"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/handler"
	"github.com/cissero/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// ModerationHandler serves the admin inbox of private user threads.
type ModerationHandler struct {
	chat *service.ChatService
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(chat *service.ChatService) *ModerationHandler {
	return &ModerationHandler{chat: chat}
}

// ListThreads handles GET /admin/messages.
func (h *ModerationHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	handler.RespondJSON(w, http.StatusOK, h.chat.Threads())
}

// ReadThread handles GET /admin/messages/{userID}. Reading marks the user's messages read.
func (h *ModerationHandler) ReadThread(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.ReadThread(chi.URLParam(r, "userID"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, msgs)
}

type replyRequest struct {
	Text string `json:"text"`
}

// Reply handles POST /admin/messages/{userID}.
func (h *ModerationHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondBadBody(w)
		return
	}
	actor := auth.SessionFromContext(r.Context()).CurrentAdmin()
	msg, err := h.chat.Reply(r.Context(), actor, chi.URLParam(r, "userID"), req.Text)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, msg)
}
