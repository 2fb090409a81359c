package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cissero/platform/internal/provider"
)

// StreamProvider is the live-streaming data source behind /api/twitch.
type StreamProvider interface {
	TopStreams(ctx context.Context, limit int) ([]provider.Stream, error)
	StreamByUsername(ctx context.Context, username string) (*provider.Stream, error)
}

// StreamsHandler proxies streaming-provider lookups. Its JSON shape is
// {"streams":[...]}, {"stream":{...}|null} or {"error":"..."}.
type StreamsHandler struct {
	streams StreamProvider
	logger  *slog.Logger
}

// NewStreamsHandler creates a new StreamsHandler.
func NewStreamsHandler(streams StreamProvider, logger *slog.Logger) *StreamsHandler {
	return &StreamsHandler{streams: streams, logger: logger}
}

// Proxy handles GET /api/twitch?action=topStreams|streamByUsername.
func (h *StreamsHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch q.Get("action") {
	case "topStreams":
		limit, _ := strconv.Atoi(q.Get("limit"))
		streams, err := h.streams.TopStreams(r.Context(), limit)
		if err != nil {
			h.fail(w, "topStreams", err)
			return
		}
		if streams == nil {
			streams = []provider.Stream{}
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{"streams": streams})

	case "streamByUsername":
		username := q.Get("username")
		if username == "" {
			RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
			return
		}
		stream, err := h.streams.StreamByUsername(r.Context(), username)
		if err != nil {
			h.fail(w, "streamByUsername", err)
			return
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{"stream": stream})

	default:
		RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid action"})
	}
}

func (h *StreamsHandler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Warn("stream provider failed", "action", action, "error", err)
	RespondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch streams"})
}
