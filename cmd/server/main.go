// Package main wires the user service together: configuration, logging,
// stores, authentication and the HTTP pipeline, then runs the server until
// a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zlin-dev/userhub/internal/config"
	"github.com/zlin-dev/userhub/internal/platform/logger"
	"github.com/zlin-dev/userhub/internal/ratelimit"
	"github.com/zlin-dev/userhub/internal/service/auth"
	"github.com/zlin-dev/userhub/internal/service/user"
	"github.com/zlin-dev/userhub/internal/store"
	"github.com/zlin-dev/userhub/internal/store/memory"
	"github.com/zlin-dev/userhub/internal/store/postgres"
)

// version is stamped by the build via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"env", cfg.Server.Env,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.URL != "",
		"redis", cfg.RateLimit.RedisURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userStore, cleanup, err := buildUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	limitStore, limitCleanup, err := buildLimitStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer limitCleanup()

	tokens, err := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	hasher := auth.NewBcryptHasher()
	userService := user.NewService(userStore, hasher, hasher, tokens)

	router := buildRouter(cfg, log, userService, tokens, limitStore)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server shutdown complete")
	return nil
}

// buildUserStore selects the persistence backend: Postgres when a database
// URL is configured, the in-memory store otherwise.
func buildUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.UserStore, func(), error) {
	if cfg.Database.URL == "" {
		log.Info("using in-memory user store")
		return memory.NewUserStore(), func() {}, nil
	}

	pg, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("using postgres user store")
	return pg, func() {
		if err := pg.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}, nil
}

// buildLimitStore selects the rate-limit window store: Redis when a URL is
// configured, the in-process store otherwise.
func buildLimitStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (ratelimit.Store, func(), error) {
	if cfg.RateLimit.RedisURL == "" {
		log.Info("using in-process rate limit store")
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("using redis rate limit store")
	return ratelimit.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close redis client", "error", err)
		}
	}, nil
}
