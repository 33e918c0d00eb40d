package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"labeld/internal/config"
	"labeld/internal/daemon"
	"labeld/internal/imagestore"
	"labeld/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := imagestore.Open(cfg, imagestore.WithLogger(logger))
	if err != nil {
		logger.Error("open image store", slog.String("error", err.Error()))
		return
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", slog.String("error", err.Error()))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", slog.String("error", err.Error()))
		return
	}

	<-ctx.Done()
	logger.Info("labeld shutting down")
}
