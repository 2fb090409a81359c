package app

import (
	"log/slog"
	"time"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/docstore"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/projection"
	"github.com/cissero/platform/internal/repository"
	"github.com/cissero/platform/internal/service"
)

// CoreOptions are the process-wide resources the domain services run on.
type CoreOptions struct {
	Snapshot   repository.Snapshot
	JournalCap int
	Docs       docstore.Store
	Cache      projection.Store
	Outbox     domain.Outbox
	Metrics    *infra.Metrics
	JWTMgr     *auth.JWTManager
	ChatLimit  int
	ChatWindow time.Duration
	Logger     *slog.Logger
}

// Core is the in-memory store, lifecycle engine and every domain service.
type Core struct {
	Store       *repository.Store
	Engine      *lifecycle.Engine
	Hub         *infra.WSHub
	JWTMgr      *auth.JWTManager
	Auth        *service.AuthService
	Admins      *service.AdminService
	Predictions *service.PredictionService
	Chat        *service.ChatService
	Reports     *service.ReportService
}

// NewCore builds the store from the snapshot and wires the services over it.
func NewCore(opts CoreOptions) *Core {
	logger := opts.Logger
	store := repository.NewMemoryStore(opts.Snapshot, opts.JournalCap)
	engine := lifecycle.NewEngine(store.Events, store.Journal, opts.Outbox, logger.With("component", "lifecycle"))
	hub := infra.NewWSHub(logger.With("component", "ws"), opts.Metrics)
	lockout := guard.NewLoginLockout()

	return &Core{
		Store:  store,
		Engine: engine,
		Hub:    hub,
		JWTMgr: opts.JWTMgr,
		Auth:   service.NewAuthService(store.Users, opts.Docs, opts.JWTMgr, lockout, logger),
		Admins: service.NewAdminService(store.Admins, opts.Docs, opts.JWTMgr, lockout, logger),
		Predictions: service.NewPredictionService(
			engine, store.Users, store.Predictions, opts.Docs, opts.Cache,
			guard.NewIdempotencyGuard(24*time.Hour), opts.Outbox, opts.Metrics, logger,
		),
		Chat: service.NewChatService(
			engine, store.Messages, store.Users,
			guard.NewRateLimiter(opts.ChatLimit, opts.ChatWindow),
			hub, opts.Outbox, opts.Metrics, logger,
		),
		Reports: service.NewReportService(store, engine),
	}
}
