package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/bootstrap"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
)

func main() {
	var cfg bootstrap.Config
	if err := bootstrap.LoadConfig(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.EnvName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv, err := bootstrap.InitServersWithOptions(ctx, &cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		logger.Errorf("failed to initialize server: %v", err)
		_ = logger.Sync()
		os.Exit(1)
	}

	go func() {
		if err := srv.App.Listen(cfg.ServerAddress); err != nil {
			logger.Errorf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("error during http shutdown: %v", err)
	}

	if err := srv.Close(shutdownCtx); err != nil {
		logger.Errorf("error closing background resources: %v", err)
	}

	_ = logger.Sync()
}
