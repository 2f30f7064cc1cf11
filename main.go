package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/txt2img/internal/config"
	"github.com/dmorgan81/txt2img/internal/inject"
	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/dmorgan81/txt2img/internal/pipeline"
	"github.com/dmorgan81/txt2img/internal/server"
	"github.com/samber/do"
)

func main() {
	logger := log.New(os.Stderr, log.ParseLevel(os.Getenv("SD_LOG_LEVEL")))
	if err := run(logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if err := config.LoadEnvFiles(config.EnvFiles...); err != nil {
		return err
	}
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}
	logger = log.New(os.Stderr, log.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	// the pipeline must load before anything binds
	if _, err := do.Invoke[*pipeline.Pipeline](injector); err != nil {
		return fmt.Errorf("loading pipeline: %w", err)
	}
	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}
	return srv.Run(ctx)
}
