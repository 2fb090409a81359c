package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cissero/platform/internal/app"
	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/docstore"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/handler"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/projection"
	"github.com/cissero/platform/internal/provider"
	"github.com/cissero/platform/internal/seed"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	metrics := infra.NewMetrics()
	ready := make(map[string]infra.Pinger)

	// Document database
	var docs docstore.Store = docstore.NewMemoryStore()
	if cfg.DocstoreDriver == "postgres" {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		docs = docstore.NewPostgresStore(pool)
		ready["postgres"] = pool
		logger.Info("connected to postgres")
	}

	// Balance projection cache
	var cache projection.Store = projection.NewInMemoryStore()
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = projection.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		redisStore := projection.NewRedisStore(redisClient, "")
		cache = redisStore
		ready["redis"] = redisStore
		logger.Info("using redis projection store", "addr", cfg.RedisAddr)
	}

	// Event bus
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	outbox := infra.NewOutboxPublisher(producer, 1024, logger.With("component", "outbox"), metrics)
	outbox.Start(outboxCtx)

	// Seed
	snap, err := seed.Load(cfg.SeedPath, bcrypt.DefaultCost)
	if err != nil {
		stopOutbox()
		return fmt.Errorf("load seed: %w", err)
	}
	logger.Info("seed loaded", "events", len(snap.Events), "admins", len(snap.Admins), "users", len(snap.Users))

	core := app.NewCore(app.CoreOptions{
		Snapshot:   snap,
		JournalCap: cfg.JournalCap,
		Docs:       docs,
		Cache:      cache,
		Outbox:     outbox,
		Metrics:    metrics,
		JWTMgr:     auth.NewJWTManager(cfg.JWTSecret, cfg.JWTUserExpiry, cfg.JWTAdminExpiry),
		ChatLimit:  cfg.ChatRateLimit,
		ChatWindow: cfg.ChatRateWindow,
		Logger:     logger,
	})

	// External providers
	breaker := guard.NewCircuitBreaker(5, 30*time.Second)
	twitch := provider.NewTwitchClient(provider.TwitchConfig{
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
		APIURL:       cfg.TwitchAPIURL,
		AuthURL:      cfg.TwitchAuthURL,
	}, breaker, logger)
	solana := provider.NewSolanaClient(cfg.SolanaRPCURL, breaker, logger)

	streamsLimiter, err := handler.NewIPLimiter(cfg.StreamsRate, redisClient)
	if err != nil {
		stopOutbox()
		return fmt.Errorf("streams rate limiter: %w", err)
	}

	r := app.NewRouter(app.RouterDeps{
		Core:           core,
		Logger:         logger,
		Metrics:        metrics,
		Streams:        twitch,
		Wallet:         solana,
		StreamsLimiter: streamsLimiter,
		ReadyChecks:    ready,
		CORSOrigins:    cfg.CORSAllowedOrigins,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		serveErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	core.Hub.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	stopOutbox()
	select {
	case <-outbox.Done():
	case <-shutdownCtx.Done():
		logger.Warn("outbox did not drain before shutdown deadline")
	}

	if serveErr != nil {
		return serveErr
	}
	logger.Info("server stopped gracefully")
	return nil
}
