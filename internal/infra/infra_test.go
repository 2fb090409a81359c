package infra

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Config Tests ---

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DocstoreDriver)
	assert.Equal(t, 100, cfg.JournalCap)
	assert.Equal(t, 24*time.Hour, cfg.JWTUserExpiry)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	base := Config{DocstoreDriver: "memory", JournalCap: 100, JWTSecret: strings.Repeat("x", 40)}

	t.Run("insecure default secret", func(t *testing.T) {
		c := base
		c.JWTSecret = "change-me-in-production"
		assert.Error(t, c.Validate())
		c.AllowInsecureDefaults = true
		assert.NoError(t, c.Validate())
	})

	t.Run("short secret", func(t *testing.T) {
		c := base
		c.JWTSecret = "short"
		assert.ErrorContains(t, c.Validate(), "too short")
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := base
		c.DocstoreDriver = "mongo"
		assert.Error(t, c.Validate())
	})

	t.Run("zero journal cap", func(t *testing.T) {
		c := base
		c.JournalCap = 0
		assert.Error(t, c.Validate())
	})
}

func TestDSN(t *testing.T) {
	c := Config{PGUser: "u", PGPassword: "p", PGHost: "h", PGPort: 1, PGDatabase: "d"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}

// --- Outbox Tests ---

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	fail   bool
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, string(key))
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics)
}

func TestOutboxPublisherDrainsOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	p := NewOutboxPublisher(pub, 10, noopLogger(), NewMetrics())

	ev := domain.Event{ID: "e1", Status: domain.StatusScheduled}
	p.Enqueue(domain.NewEventLifecycleDraft(domain.EventApproved, ev))
	p.Enqueue(domain.NewEventLifecycleDraft(domain.EventCompleted, ev))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}

	assert.Equal(t, 2, pub.count())
	assert.Equal(t, []string{"e1", "e1"}, pub.keys)
	assert.Contains(t, pub.topics, string(domain.EventApproved))
}

func TestOutboxPublisherDropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	p := NewOutboxPublisher(pub, 1, noopLogger(), nil)

	ev := domain.Event{ID: "e1"}
	p.Enqueue(domain.NewEventLifecycleDraft(domain.EventUpdated, ev))
	p.Enqueue(domain.NewEventLifecycleDraft(domain.EventUpdated, ev)) // dropped, must not block

	assert.Len(t, p.queue, 1)
}

func TestOutboxPublisherSurvivesFailures(t *testing.T) {
	pub := &fakePublisher{fail: true}
	p := NewOutboxPublisher(pub, 4, noopLogger(), NewMetrics())
	p.Enqueue(domain.NewEventLifecycleDraft(domain.EventDeleted, domain.Event{ID: "e1"}))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	<-p.Done()
	assert.Equal(t, 0, pub.count())
}

// --- Metrics Tests ---

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.PredictionPlaced(100)
	m.ObserveHTTP("GET", "/events", "200", 0.01)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "cissero_predictions_placed_total 1")
	assert.Contains(t, body, "cissero_points_staked_total 100")
	assert.Contains(t, body, `cissero_http_requests_total{method="GET",route="/events",status="200"} 1`)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.PredictionPlaced(1)
	m.ChatPosted()
	m.WSConnected(1)
	m.OutboxResult("x", "y")
	m.ObserveHTTP("GET", "/", "200", 0)
}

// --- WebSocket Tests ---

func TestWSHubRoomFanOut(t *testing.T) {
	hub := NewWSHub(noopLogger(), nil)
	c1 := &WSConn{ID: "c1", Send: make(chan []byte, 1)}
	c2 := &WSConn{ID: "c2", Send: make(chan []byte, 1)}
	hub.Join(EventRoom("e1"), c1)
	hub.Join(EventRoom("e2"), c2)

	hub.Publish(EventRoom("e1"), "chat.message", map[string]string{"text": "gg"})

	select {
	case msg := <-c1.Send:
		assert.JSONEq(t, `{"event":"chat.message","data":{"text":"gg"}}`, string(msg))
	default:
		t.Fatal("c1 got nothing")
	}
	assert.Empty(t, c2.Send)

	hub.Leave(EventRoom("e1"), "c1")
	assert.Equal(t, 1, hub.RoomCount())
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestWSHubServeWS(t *testing.T) {
	hub := NewWSHub(noopLogger(), NewMetrics())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, EventRoom("e1"), "u1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(EventRoom("e1"), "chat.message", map[string]string{"text": "hello"})

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	ws.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
