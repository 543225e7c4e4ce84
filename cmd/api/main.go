// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BuildAppolis/Nexus-Forge/internal/admin"
	"github.com/BuildAppolis/Nexus-Forge/internal/auth"
	"github.com/BuildAppolis/Nexus-Forge/internal/billing"
	"github.com/BuildAppolis/Nexus-Forge/internal/config"
	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	"github.com/BuildAppolis/Nexus-Forge/internal/email"
	"github.com/BuildAppolis/Nexus-Forge/internal/health"
	"github.com/BuildAppolis/Nexus-Forge/internal/middleware"
	"github.com/BuildAppolis/Nexus-Forge/internal/server"
	"github.com/BuildAppolis/Nexus-Forge/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	sessCfg := cfg.Session
	if cfg.IsProduction() {
		sessCfg.CookieSecure = true
	}

	authRepo := auth.NewRepository(db.DB)
	tokenIssuer := auth.NewTokenIssuer(authRepo)
	sessions := auth.NewSessionManager(authRepo, userSvc, sessCfg)
	mailer := email.NewMailer(cfg.Email, logger)
	authSvc := auth.NewService(
		userSvc,
		tokenIssuer,
		sessions,
		mailer,
		cfg.App.URL,
		logger,
	)
	authHandler := auth.NewHandler(authSvc, sessions, logger)

	stripeClient := billing.NewClient(cfg.Stripe.SecretKey)
	billingSvc := billing.NewService(
		stripeClient,
		stripeClient,
		userSvc,
		cfg.Stripe.PriceID,
		cfg.App.URL,
		logger,
	)
	billingHandler := billing.NewHandler(
		billingSvc,
		cfg.Stripe.WebhookSecret,
		logger,
	)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Purger:     sessions,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(sessions, sessions.CookieName())
	adminOnly := middleware.RequireAdmin

	// Per-principal budget by account role, applied once the session
	// middleware has attached the principal.
	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleLimits,
	)
	authed := func(next http.Handler) http.Handler {
		return authenticator(roleLimiter(next))
	}

	credLimiter := middleware.NewCredentialRateLimiter(redis.Client, 10)

	router.Route("/v1", func(r chi.Router) {
		r.With(credLimiter.Handler).Mount("/auth", authHandler.Routes(authed))
		r.Mount("/billing", billingHandler.Routes(authed))

		userHandler.RegisterRoutes(r, authed)
		userHandler.RegisterAdminRoutes(r, authed, adminOnly)
		adminHandler.RegisterRoutes(r, authed, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
