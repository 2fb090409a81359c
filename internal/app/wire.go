package app

import (
	"log/slog"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/handler"
	adminhandler "github.com/cissero/platform/internal/handler/admin"
	"github.com/cissero/platform/internal/infra"
	"github.com/go-chi/chi/v5"
	"github.com/ulule/limiter/v3"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Core    *Core
	Logger  *slog.Logger
	Metrics *infra.Metrics

	// External providers
	Streams handler.StreamProvider
	Wallet  handler.WalletProvider

	// StreamsLimiter guards the public streaming proxy; nil disables it.
	StreamsLimiter *limiter.Limiter
	ReadyChecks    map[string]infra.Pinger
	CORSOrigins    string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	core := deps.Core
	logger := deps.Logger
	jwtMgr := core.JWTMgr

	// Handlers
	authHandler := handler.NewAuthHandler(core.Auth, core.Admins)
	eventHandler := handler.NewEventHandler(core.Engine)
	predictionHandler := handler.NewPredictionHandler(core.Predictions)
	chatHandler := handler.NewChatHandler(core.Chat, core.Engine, core.Hub, logger)
	streamsHandler := handler.NewStreamsHandler(deps.Streams, logger)
	walletHandler := handler.NewWalletHandler(deps.Wallet, logger)

	// Admin handlers
	eventAdmin := adminhandler.NewEventAdminHandler(core.Engine, core.Predictions)
	adminsAdmin := adminhandler.NewAdminsHandler(core.Admins)
	reportsAdmin := adminhandler.NewReportsHandler(core.Reports)
	moderationAdmin := adminhandler.NewModerationHandler(core.Chat)

	requireUser := auth.AuthenticateUser(jwtMgr, core.Store.Users)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Metrics(deps.Metrics))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))
	r.Use(handler.JSONContentType)

	// Health and metrics (no auth)
	r.Get("/health", handler.HealthHandler())
	r.Get("/ready", handler.ReadyHandler(deps.ReadyChecks))
	r.Handle("/metrics", deps.Metrics.Handler())

	// Streaming proxy (public, rate limited per IP)
	r.Group(func(r chi.Router) {
		if deps.StreamsLimiter != nil {
			r.Use(handler.IPRateLimit(deps.StreamsLimiter, logger))
		}
		r.Get("/api/twitch", streamsHandler.Proxy)
	})

	// On-chain wallet (public; transactions arrive signed)
	r.Route("/wallet", func(r chi.Router) {
		r.Get("/{address}/balance", walletHandler.GetBalance)
		r.Post("/transfer", walletHandler.Transfer)
	})

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Public event reads
	r.Get("/events", eventHandler.List)
	r.Get("/events/{id}", eventHandler.Get)
	r.Get("/events/{id}/predictions", predictionHandler.ForEvent)
	r.Get("/events/{id}/chat", chatHandler.List)
	r.Get("/events/{id}/chat/ws", chatHandler.Live)

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/me", authHandler.Me)
		r.Get("/me/balance", predictionHandler.Balance)
		r.Get("/predictions/me", predictionHandler.Mine)

		r.Post("/events", eventHandler.Submit)
		r.Get("/events/mine", eventHandler.Mine)
		r.Post("/events/{id}/predictions", predictionHandler.Place)
		r.Post("/events/{id}/chat", chatHandler.Post)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", chatHandler.MyThread)
			r.Post("/", chatHandler.SendPrivate)
		})
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth/login", authHandler.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(jwtMgr, core.Store.Admins))

			r.Get("/me", adminsAdmin.Me)

			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventAdmin.List)
				r.Get("/{id}/history", eventAdmin.History)
				r.Get("/{id}/predictions", eventAdmin.Predictions)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequirePermission(domain.PermManageEvents))
					r.Post("/", eventAdmin.Create)
					r.Patch("/{id}", eventAdmin.Update)
					r.Delete("/{id}", eventAdmin.Delete)
					r.Post("/{id}/approve", eventAdmin.Approve)
					r.Post("/{id}/reject", eventAdmin.Reject)
					r.Post("/{id}/assign", eventAdmin.Assign)
					r.Post("/{id}/complete", eventAdmin.Complete)
					r.Post("/{id}/undo", eventAdmin.Undo)
					r.Post("/{id}/settle", eventAdmin.Settle)
				})
			})

			// Authorization for admin management lives in auth.CanManage.
			r.Route("/admins", func(r chi.Router) {
				r.Get("/", adminsAdmin.List)
				r.Post("/", adminsAdmin.Create)
				r.Get("/{id}", adminsAdmin.Get)
				r.Patch("/{id}", adminsAdmin.Update)
				r.Delete("/{id}", adminsAdmin.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(auth.RequirePermission(domain.PermViewReports))
				r.Get("/dashboard", reportsAdmin.GetDashboardStats)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Use(auth.RequirePermission(domain.PermModerateChat))
				r.Get("/", moderationAdmin.ListThreads)
				r.Get("/{userID}", moderationAdmin.ReadThread)
				r.Post("/{userID}", moderationAdmin.Reply)
			})
		})
	})

	return r
}
