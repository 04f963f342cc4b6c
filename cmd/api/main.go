package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/agencyhub/internal/api"
	"github.com/nikhilbhutani/agencyhub/internal/auth"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/database"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
	"github.com/nikhilbhutani/agencyhub/internal/storage"
	"github.com/nikhilbhutani/agencyhub/internal/store/memory"
	"github.com/nikhilbhutani/agencyhub/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid config", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	deps := api.Deps{}

	// Postgres when configured; the in-memory store is for local development.
	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		pg := postgres.New(db)
		deps.Store = pg
		deps.DB = pg
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		deps.Store = memory.New()
	}

	// Redis connection (optional)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and queue", "error", err)
		deps.Notifier = &memory.Outbox{}
	} else {
		deps.Redis = rdb
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		deps.Notifier = qc
	}

	if cfg.Storage.SupabaseURL != "" && cfg.Storage.SupabaseKey != "" {
		deps.Files = storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	} else {
		slog.Warn("storage not configured, keeping uploads in memory")
		deps.Files = memory.NewFiles()
	}

	if cfg.Auth.SupabaseURL != "" && cfg.Auth.SupabaseServiceKey != "" {
		deps.AuthAdmin = auth.NewSupabaseAdmin(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseServiceKey)
	}

	// Setup router
	router := api.NewRouter(cfg, deps)
	defer router.Close()
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
