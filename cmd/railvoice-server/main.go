// Package main provides the HTTP API server for railvoice.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/config"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/raphaelgruber/railvoice/internal/server"
)

func main() {
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	cfg := config.Load()
	level := cfg.LogLevel
	if *debug {
		level = slog.LevelDebug
	}
	logger, closeLog := config.SetupLogger(cfg.LogFile, level)
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	collector := metrics.NewCollector()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, closeAgent, err := agent.NewFromConfig(initCtx, cfg, collector, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	defer func() {
		if err := closeAgent(); err != nil {
			logger.Error("failed to close speech clients", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting railvoice-server", "port", cfg.Port, "llm_provider", cfg.LLMProvider)
	srv := server.New(a, collector, logger)
	return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Port))
}
