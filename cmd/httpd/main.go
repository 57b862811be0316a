// Command httpd runs the civic complaint triage HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janvedha/triage/internal/bootstrap"
	"github.com/janvedha/triage/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "triage: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := bootstrap.NewHTTPComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = comps.DB.Close() }()

	errCh := make(chan error, 1)
	go func() {
		errCh <- comps.Server.Start()
	}()

	log.Info("triage service started",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()
	if err := comps.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
