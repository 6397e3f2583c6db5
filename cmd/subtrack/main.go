package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/subtrackhq/subtrack/internal/app"
	"github.com/subtrackhq/subtrack/internal/config"
)

func main() {
	cfg := config.MustLoad()

	level := slog.LevelWarn
	if cfg.Env == "local" || cfg.Env == "dev" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}
