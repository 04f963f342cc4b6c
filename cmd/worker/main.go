package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/notify"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
	"github.com/nikhilbhutani/agencyhub/internal/queue/workers"
)

const concurrency = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	mailer, err := notify.New(context.Background(), cfg.Mail)
	if err != nil {
		slog.Error("failed to build mailer", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	workers.NewNotificationWorker(mailer).Register(registry)

	slog.Info("starting worker", "concurrency", concurrency, "mail_backend", cfg.Mail.Backend)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
