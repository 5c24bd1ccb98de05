package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/api"
	"github.com/felixgeelhaar/memoryplanner/internal/app"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	logCfg := observability.LogConfigFromEnv(os.Getenv)
	logCfg.ServiceName = "planner-api"
	logger := observability.NewLogger(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("api server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			return err
		}
	}

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.APIAddr
	// A local install has one user; hosted deployments need X-User-ID.
	if cfg.LocalMode {
		serverCfg.DefaultUserID = cfg.DefaultUser()
	}

	server := api.NewServer(serverCfg, api.Dependencies{
		Plans: api.NewPlanHandler(
			container.GeneratePlanHandler,
			container.SetItemCompletedHandler,
			container.GetPlanHandler,
			container.ListPlansHandler,
			logger,
		),
		Health:   container.Health,
		Gatherer: container.Registry,
		Metrics:  container.Metrics,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
