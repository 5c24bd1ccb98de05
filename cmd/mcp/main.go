package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/memoryplanner/internal/app"
	mcpinternal "github.com/felixgeelhaar/memoryplanner/internal/mcp"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

func main() {
	logCfg := observability.LogConfigFromEnv(os.Getenv)
	logCfg.ServiceName = "planner-mcp"
	logger := observability.NewLogger(logCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if container.UsesBroker() && cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Warn("failed to start outbox processor", "error", err)
		}
	}

	cliApp := mcpinternal.NewCLIApp(container, cfg.DefaultUser())

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
