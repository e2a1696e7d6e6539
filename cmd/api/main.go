// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/admin-console/internal/admin"
	"github.com/carterperez-dev/templates/admin-console/internal/auth"
	"github.com/carterperez-dev/templates/admin-console/internal/config"
	"github.com/carterperez-dev/templates/admin-console/internal/core"
	"github.com/carterperez-dev/templates/admin-console/internal/health"
	"github.com/carterperez-dev/templates/admin-console/internal/middleware"
	"github.com/carterperez-dev/templates/admin-console/internal/project"
	"github.com/carterperez-dev/templates/admin-console/internal/server"
	"github.com/carterperez-dev/templates/admin-console/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrate := flag.Bool("migrate", false, "apply the database schema before serving")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	if err := run(*configPath, *migrate, *genKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, migrate, genKeys bool) error {
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

	if genKeys {
		if err := auth.GenerateKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		); err != nil {
			return err
		}
		logger.Info("ES256 key pair written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

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

	if migrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	redis, err := core.NewRedis(cfg.Redis, cfg.App.Name)
	if err != nil {
		return err
	}
	if err := redis.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, rate limiting per process until it returns",
			"error", err,
		)
	} else {
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	projectSvc := project.NewService(project.NewRepository(db.DB))
	projectHandler := project.NewHandler(projectSvc)

	authSvc := auth.NewService(userSvc, jwtManager)
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis, Optional: true},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Directory:  admin.NewDirectory(userSvc, projectSvc),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	globalLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.Per(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen: true,
	})
	defer globalLimiter.Close()
	router.Use(globalLimiter.Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Name:  "login",
		Limit: middleware.Per(
			cfg.LoginRateLimit.Requests,
			cfg.LoginRateLimit.Burst,
			cfg.LoginRateLimit.Window,
		),
		KeyFunc:  middleware.KeyByLoginIP,
		FailOpen: true,
	})
	defer loginLimiter.Close()
	authHandler.RegisterRoutes(router, loginLimiter.Handler)

	authenticator := middleware.Authenticator(jwtManager)

	userHandler.RegisterProfileRoutes(router, authenticator)

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		userHandler.RegisterAdminRoutes(r)
		projectHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
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
