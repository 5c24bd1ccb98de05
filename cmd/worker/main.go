package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/api"
	"github.com/felixgeelhaar/memoryplanner/internal/app"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/memoryplanner/internal/worker"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

// maxOutboxLag degrades the worker health check.
const maxOutboxLag = 5 * time.Minute

func main() {
	logCfg := observability.LogConfigFromEnv(os.Getenv)
	logCfg.ServiceName = "planner-worker"
	logger := observability.NewLogger(logCfg)

	logger.Info("starting planner worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	// Relay the outbox to the broker, or to the in-process bus in local mode
	if err := container.OutboxProcessor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start outbox processor: %w", err)
	}
	container.Health.Register("outbox", worker.OutboxChecker(container.OutboxProcessor, maxOutboxLag))

	if container.UsesBroker() {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: logger,
		}, container.Dispatcher)
		if err != nil {
			return err
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", "error", err)
			}
		}()
	}

	scheduler := worker.NewScheduler(time.Local, logger).WithMetrics(container.Metrics)
	regenerate, err := scheduler.Schedule(ctx, "plans.regenerate", cfg.RegenerateCron, func(ctx context.Context) error {
		_, err := container.RegeneratePlansHandler.Handle(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if cfg.OutboxCleanupInterval > 0 {
		if _, err := scheduler.Schedule(ctx, "outbox.cleanup", "@every "+cfg.OutboxCleanupInterval.String(), func(ctx context.Context) error {
			deleted, err := container.OutboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.InfoContext(ctx, "outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("nightly planning scheduled", "cron", cfg.RegenerateCron, "next", scheduler.Next(regenerate))

	if cfg.WorkerHealthAddr != "" {
		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.WorkerHealthAddr
		health := api.NewServer(serverCfg, api.Dependencies{
			Health:   container.Health,
			Gatherer: container.Registry,
			Metrics:  container.Metrics,
		}, logger)

		go func() {
			if err := health.Start(); err != nil {
				logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := health.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	return nil
}
