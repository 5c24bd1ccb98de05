package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/subscribers"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/infrastructure/cache"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/infrastructure/persistence"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/infrastructure/suggestion"
	sharedApplication "github.com/felixgeelhaar/memoryplanner/internal/shared/application"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/memoryplanner/pkg/config"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Metrics
	Registry *prometheus.Registry
	Metrics  observability.Metrics
	Health   *observability.HealthRegistry

	// Database
	DB database.Connection

	// Redis, nil in local mode or when unreachable in development
	RedisClient *redis.Client

	// Repositories
	PlanRepo     *persistence.PlanRepository
	ProfileRepo  *persistence.ProfileRepository
	TaskSource   *persistence.TaskSourceRepository
	BlockedRepo  *persistence.BlockedSlotRepository
	ActivityRepo *persistence.ActivityRepository
	Locations    domain.LocationSource
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork

	// Planning services
	Locker    domain.GenerationLocker
	Suggester domain.Suggester

	// Events. Publisher is the in-process bus unless a broker is configured.
	Dispatcher      *eventbus.Dispatcher
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Command Handlers
	GeneratePlanHandler     *commands.GeneratePlanHandler
	SetItemCompletedHandler *commands.SetItemCompletedHandler
	RegeneratePlansHandler  *commands.RegeneratePlansHandler

	// Query Handlers
	GetPlanHandler   *queries.GetPlanHandler
	ListPlansHandler *queries.ListPlansHandler
}

// NewContainer creates and wires all dependencies. Local mode runs on SQLite
// with in-process locks, caches and event delivery.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Health:   observability.NewHealthRegistry(),
	}
	c.Metrics = observability.NewPrometheusMetrics(c.Registry)

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = conn
	logger.Info("connected to database", "driver", conn.Driver().String())

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "versions", applied)
	}
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))

	if !cfg.LocalMode && cfg.RedisURL != "" {
		if err := c.connectRedis(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.PlanRepo = persistence.NewPlanRepository(conn)
	c.ProfileRepo = persistence.NewProfileRepository(conn)
	c.TaskSource = persistence.NewTaskSourceRepository(conn)
	c.BlockedRepo = persistence.NewBlockedSlotRepository(conn)
	c.ActivityRepo = persistence.NewActivityRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	if c.RedisClient != nil {
		c.Locker = cache.NewRedisLocker(c.RedisClient)
		c.Locations = cache.NewCachedLocationSource(c.ActivityRepo, cache.NewRedisStore(c.RedisClient), cache.DefaultLocationTTL, logger)
	} else {
		c.Locker = cache.NewInMemoryLocker()
		c.Locations = cache.NewCachedLocationSource(c.ActivityRepo, cache.NewInMemoryStore(), cache.DefaultLocationTTL, logger)
	}

	if cfg.SuggestionsEnabled() {
		c.Suggester = suggestion.NewClient(suggestion.Config{
			BaseURL: cfg.LLMAPIURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		}, logger)
	}

	c.Dispatcher = eventbus.NewDispatcher(logger).WithMetrics(c.Metrics)
	c.Dispatcher.Register(subscribers.NewSubstepProgressSubscriber(c.TaskSource, logger))
	if err := c.connectPublisher(); err != nil {
		c.Close()
		return nil, err
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig(cfg), logger).
		WithMetrics(c.Metrics)

	// Create command handlers
	generate := commands.NewGeneratePlanHandler(
		c.PlanRepo, c.ProfileRepo, c.TaskSource, c.BlockedRepo, c.ActivityRepo,
		c.OutboxRepo, c.UnitOfWork, logger,
	).WithLocker(c.Locker, cfg.GenerationLockTTL).WithMetrics(c.Metrics)
	if c.Suggester != nil {
		generate.WithSuggestions(services.NewSuggestionAppender(c.Suggester, c.Locations, logger).
			WithMetrics(c.Metrics).
			WithTimeout(cfg.LLMTimeout))
	}
	c.GeneratePlanHandler = generate
	c.SetItemCompletedHandler = commands.NewSetItemCompletedHandler(c.PlanRepo, c.OutboxRepo, c.UnitOfWork).
		WithMetrics(c.Metrics)
	c.RegeneratePlansHandler = commands.NewRegeneratePlansHandler(c.ProfileRepo, generate, logger)

	// Create query handlers
	c.GetPlanHandler = queries.NewGetPlanHandler(c.PlanRepo)
	c.ListPlansHandler = queries.NewListPlansHandler(c.PlanRepo)

	return c, nil
}

// processorConfig overlays the configured outbox settings on the defaults.
func processorConfig(cfg *config.Config) outbox.ProcessorConfig {
	pc := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		pc.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		pc.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		pc.MaxRetries = cfg.OutboxMaxRetries
	}
	return pc
}

func (c *Container) connectRedis(ctx context.Context) error {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, using in-process lock and cache", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, using in-process lock and cache", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectPublisher() error {
	if c.Config.LocalMode || c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewInProcessBus(c.Dispatcher, c.Logger)
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
		c.EventPublisher = eventbus.NewInProcessBus(c.Dispatcher, c.Logger)
		return nil
	}
	c.EventPublisher = publisher
	c.Health.Register("rabbitmq", observability.PingChecker("rabbitmq", observability.HealthStatusDegraded, publisher.Ping))
	return nil
}

// UsesBroker reports whether events leave the process through RabbitMQ.
func (c *Container) UsesBroker() bool {
	_, ok := c.EventPublisher.(*eventbus.RabbitMQPublisher)
	return ok
}

// Flush delivers pending outbox events once. Short-lived processes call it
// after a command when events are delivered in process.
func (c *Container) Flush(ctx context.Context) error {
	if c.UsesBroker() {
		return nil
	}
	return c.OutboxProcessor.ProcessOnce(ctx)
}

// Close releases all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
