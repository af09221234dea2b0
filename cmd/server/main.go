// Package main is the entrypoint for the DeployMedic API server.
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

	"github.com/deploymedic/deploymedic/internal/analysis"
	"github.com/deploymedic/deploymedic/internal/api"
	"github.com/deploymedic/deploymedic/internal/api/handler"
	mw "github.com/deploymedic/deploymedic/internal/api/middleware"
	"github.com/deploymedic/deploymedic/internal/cache"
	"github.com/deploymedic/deploymedic/internal/catalog"
	"github.com/deploymedic/deploymedic/internal/config"
	"github.com/deploymedic/deploymedic/internal/diagnose"
	"github.com/deploymedic/deploymedic/internal/oracle"
	"github.com/deploymedic/deploymedic/internal/simstore"
	"github.com/deploymedic/deploymedic/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "oracle_provider", cfg.Oracle.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create the oracle, if one is configured
	consultant, err := oracle.NewOracle(cfg.Oracle)
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}
	if consultant != nil {
		slog.Info("oracle initialized", "provider", consultant.Name())
	} else {
		slog.Info("oracle disabled, running on catalog and stored patterns")
	}

	// 6. Create store and pattern memory
	pgStore := store.NewPostgresStore(pool)

	patterns, err := simstore.NewPatternStore(ctx, pgStore, simstore.HashEmbedder{}, cfg.Patterns, logger)
	if err != nil {
		return fmt.Errorf("create pattern store: %w", err)
	}
	slog.Info("pattern index ready")

	// 7. Assemble the diagnosis pipeline
	matcher := analysis.NewMatcher(catalog.Signatures())
	resolver := analysis.NewResolver(catalog.Lookup, catalog.GenericFallback())
	analyzer := diagnose.NewAnalyzer(matcher, resolver, consultant, patterns, logger)

	// 8. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:   handler.NewHealthHandler(pgStore, redisCache),
		DiagnoseHandler: handler.NewDiagnoseHandler(analyzer, redisCache, cfg.Redis.ResultTTL),
		FeedbackHandler: handler.NewFeedbackHandler(patterns),
		StatsHandler:    handler.NewStatsHandler(patterns),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
