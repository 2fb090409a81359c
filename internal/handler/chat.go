package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// ChatHandler serves event chat, its live WebSocket feed and private messages.
type ChatHandler struct {
	chat   *service.ChatService
	engine *lifecycle.Engine
	hub    *infra.WSHub
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService, engine *lifecycle.Engine, hub *infra.WSHub, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, engine: engine, hub: hub, logger: logger}
}

type textRequest struct {
	Text string `json:"text"`
}

// List handles GET /events/{id}/chat?limit=n.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.chat.ListMessages(chi.URLParam(r, "id"), limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, msgs)
}

// Post handles POST /events/{id}/chat.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req textRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	msg, err := h.chat.PostMessage(r.Context(), user, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, msg)
}

// Live handles GET /events/{id}/chat/ws, subscribing the socket to the event room.
func (h *ChatHandler) Live(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.engine.Get(id); err != nil {
		RespondError(w, err)
		return
	}

	var userID string
	if u := auth.SessionFromContext(r.Context()).CurrentUser(); u != nil {
		userID = u.ID
	}
	if err := h.hub.ServeWS(w, r, infra.EventRoom(id), userID); err != nil {
		h.logger.Debug("ws upgrade failed", "event_id", id, "error", err)
	}
}

// SendPrivate handles POST /messages.
func (h *ChatHandler) SendPrivate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req textRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	msg, err := h.chat.SendPrivate(r.Context(), user, req.Text)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, msg)
}

// MyThread handles GET /messages.
func (h *ChatHandler) MyThread(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.chat.Thread(user.ID))
}
