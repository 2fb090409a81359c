package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cissero/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusCreated, map[string]string{"id": "e7"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"e7"}`, w.Body.String())

	w = httptest.NewRecorder()
	RespondJSON(w, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound("event", "e9"), 404, "NOT_FOUND"},
		{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
		{domain.ErrUnauthorized("no token"), 401, "UNAUTHORIZED"},
		{domain.ErrForbidden("not allowed"), 403, "FORBIDDEN"},
		{domain.ErrConflict("duplicate"), 409, "CONFLICT"},
		{domain.ErrInvalidTransition("approve", domain.StatusScheduled), 409, "INVALID_TRANSITION"},
		{domain.ErrInsufficientBalance(), 400, "INSUFFICIENT_BALANCE"},
		{domain.ErrIdempotent("k1"), 409, "IDEMPOTENT"},
		{domain.ErrRateLimited("slow down"), 429, "RATE_LIMITED"},
		{domain.ErrAccountLocked("locked"), 429, "ACCOUNT_LOCKED"},
		{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		{fmt.Errorf("place: %w", domain.ErrInsufficientBalance()), 400, "INSUFFICIENT_BALANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestRespondError_UnknownErrorIsOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"internal server error"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Title  string `json:"title"`
		Amount int64  `json:"amount"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"Finals","amount":42}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Finals", dst.Title)
	assert.Equal(t, int64(42), dst.Amount)

	for name, body := range map[string]string{
		"malformed": `{invalid`,
		"too large": `"` + strings.Repeat("x", maxBodyBytes) + `"`,
	} {
		t.Run(name, func(t *testing.T) {
			var v interface{}
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
			assert.Error(t, DecodeJSON(r, &v))
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"single forwarded", "1.2.3.4", "10.0.0.1:1", "1.2.3.4"},
		{"forwarded chain takes first", "1.2.3.4, 5.6.7.8", "10.0.0.1:1", "1.2.3.4"},
		{"forwarded with spaces", "  1.2.3.4  ", "10.0.0.1:1", "1.2.3.4"},
		{"remote host and port", "", "10.0.0.1:54321", "10.0.0.1"},
		{"remote without port", "", "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "req-abc", seen)
	assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))

	assert.Empty(t, GetRequestID(context.Background()))
}

func TestJSONContentType(t *testing.T) {
	w := httptest.NewRecorder()
	JSONContentType(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestCORSWithOrigins(t *testing.T) {
	h := CORSWithOrigins("https://app.cissero.tv")(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.cissero.tv", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(noopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("journal corrupted")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	w = httptest.NewRecorder()
	Recovery(noopLogger())(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, rw.status)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// httptest.ResponseRecorder cannot be hijacked.
	_, _, err := rw.Hijack()
	assert.Error(t, err)
}
