package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/adapter/cli/plan"
	cliSettings "github.com/felixgeelhaar/memoryplanner/adapter/cli/settings"
	"github.com/felixgeelhaar/memoryplanner/internal/app"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

func main() {
	// Setup logger
	logCfg := observability.LogConfigFromEnv(os.Getenv)
	logCfg.ServiceName = "planner"
	logCfg.Output = os.Stderr
	logger := observability.NewLogger(logCfg)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.IsDevelopment() && os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = observability.LogLevelWarn
		logger = observability.NewLogger(logCfg)
	}
	cli.SetLogger(logger)

	// Without a database only preview works
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		// Brokered events are relayed by the worker; in-process ones are
		// flushed after each command.
		if container.UsesBroker() && cfg.OutboxProcessorEnabled {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				logger.Warn("failed to start outbox processor", "error", err)
			}
		}

		cliApp = cli.NewApp(
			container.GeneratePlanHandler,
			container.SetItemCompletedHandler,
			container.GetPlanHandler,
			container.ListPlansHandler,
		)
		cliApp.SetCurrentUserID(cfg.DefaultUser())
		cliApp.SetSettingsStores(container.ProfileRepo, container.BlockedRepo, container.ActivityRepo)
		cliApp.SetFlusher(container)
	}

	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(plan.Cmd)
	cli.AddCommand(cliSettings.Cmd)

	// Execute CLI
	cli.Execute()
}
