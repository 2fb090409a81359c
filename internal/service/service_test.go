package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/docstore"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/projection"
	"github.com/cissero/platform/internal/repository"
	"github.com/cissero/platform/internal/seed"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingOutbox struct {
	mu     sync.Mutex
	drafts []domain.OutboxDraft
}

func (o *recordingOutbox) Enqueue(d domain.OutboxDraft) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drafts = append(o.drafts, d)
}

func (o *recordingOutbox) count(t domain.OutboxEventType) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, d := range o.drafts {
		if d.EventType == t {
			n++
		}
	}
	return n
}

type fixture struct {
	store       *repository.Store
	engine      *lifecycle.Engine
	docs        *docstore.MemoryStore
	cache       *projection.InMemoryStore
	outbox      *recordingOutbox
	hub         *infra.WSHub
	jwt         *auth.JWTManager
	auth        *AuthService
	admins      *AdminService
	predictions *PredictionService
	chat        *ChatService
	reports     *ReportService
}

// newFixture wires every service over the default seed data.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	snap, err := seed.Load("", bcrypt.MinCost)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:  repository.NewMemoryStore(snap, 100),
		docs:   docstore.NewMemoryStore(),
		cache:  projection.NewInMemoryStore(),
		outbox: &recordingOutbox{},
		hub:    infra.NewWSHub(logger, nil),
		jwt:    auth.NewJWTManager("service-test-secret-0123456789abcdef", time.Hour, time.Hour),
	}
	f.engine = lifecycle.NewEngine(f.store.Events, f.store.Journal, f.outbox, logger)

	lockout := guard.NewLoginLockout()
	f.auth = NewAuthService(f.store.Users, f.docs, f.jwt, lockout, logger)
	f.auth.cost = bcrypt.MinCost
	f.admins = NewAdminService(f.store.Admins, f.docs, f.jwt, lockout, logger)
	f.admins.cost = bcrypt.MinCost
	f.predictions = NewPredictionService(
		f.engine, f.store.Users, f.store.Predictions, f.docs, f.cache,
		guard.NewIdempotencyGuard(time.Hour), f.outbox, nil, logger,
	)
	f.chat = NewChatService(
		f.engine, f.store.Messages, f.store.Users, guard.NewRateLimiter(3, time.Minute),
		f.hub, f.outbox, nil, logger,
	)
	f.reports = NewReportService(f.store, f.engine)
	return f
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u := f.store.Users.FindByID(id)
	require.NotNil(t, u, "user %s", id)
	return u
}

func (f *fixture) admin(t *testing.T, id string) *domain.AdminUser {
	t.Helper()
	a := f.store.Admins.FindByID(id)
	require.NotNil(t, a, "admin %s", id)
	return a
}
