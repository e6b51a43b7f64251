package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/contacts-api/config"
	"github.com/ErlanBelekov/contacts-api/internal/auth/password"
	"github.com/ErlanBelekov/contacts-api/internal/auth/token"
	"github.com/ErlanBelekov/contacts-api/internal/health"
	"github.com/ErlanBelekov/contacts-api/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/contacts-api/internal/log"
	"github.com/ErlanBelekov/contacts-api/internal/metrics"
	"github.com/ErlanBelekov/contacts-api/internal/ratelimit"
	httptransport "github.com/ErlanBelekov/contacts-api/internal/transport/http"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/contacts-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	hasher, err := password.New([]byte(cfg.PasswordPepper), cfg.BcryptCost)
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("password hasher: %v", err)
	}
	tokens, err := token.NewService([]byte(cfg.JWTSecret), token.WithLeeway(cfg.JWTLeeway))
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("token service: %v", err)
	}

	// Accounts
	accountRepo := postgres.NewAccountRepository(pool)
	authUsecase := usecase.NewAuthUsecase(accountRepo, hasher, tokens, cfg.JWTTTL,
		usecase.WithHashConcurrency(cfg.HashConcurrency))
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Contacts
	contactRepo := postgres.NewContactRepository(pool)
	contactUsecase := usecase.NewContactUsecase(contactRepo)
	contactHandler := handler.NewContactHandler(contactUsecase, logger)

	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}

	var loginLimiter middleware.AttemptLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			stop()
			pool.Close()
			log.Fatalf("redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		loginLimiter = ratelimit.New(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow, "login")
		deps = append(deps, health.Dependency{
			Name:   "redis",
			Pinger: health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
	} else {
		logger.Warn("REDIS_URL not set, login throttling disabled")
	}

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Logger:         logger,
			AuthHandler:    authHandler,
			ContactHandler: contactHandler,
			Tokens:         tokens,
			LoginLimiter:   loginLimiter,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
