package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultUserID is the single local user when PLANNER_USER_ID is unset.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Database. LocalMode uses SQLite at SQLitePath and in-process locks,
	// caches and event delivery.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Servers
	APIAddr          string
	WorkerHealthAddr string
	MCPAddr          string
	MCPAuthToken     string

	// Suggestions
	LLMAPIURL  string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Planning
	RegenerateCron    string
	GenerationLockTTL time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("PLANNER_USER_ID", DefaultUserID),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		APIAddr:          getEnv("API_ADDR", "0.0.0.0:8080"),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		MCPAddr:          getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken:     getEnv("MCP_AUTH_TOKEN", ""),

		LLMAPIURL:  getEnv("LLM_API_URL", ""),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout: getDurationEnv("LLM_TIMEOUT", 20*time.Second),

		// seconds field first: 22:00:00 every day
		RegenerateCron:    getEnv("REGENERATE_CRON", "0 0 22 * * *"),
		GenerationLockTTL: getDurationEnv("GENERATION_LOCK_TTL", 30*time.Second),
	}

	cfg.LocalMode = cfg.DatabaseURL == "" || getBoolEnv("PLANNER_LOCAL_MODE", false)
	if cfg.LocalMode {
		cfg.DatabaseDriver = "sqlite"
	} else {
		cfg.DatabaseDriver = "postgres"
	}

	if _, err := uuid.Parse(cfg.UserID); err != nil {
		return nil, fmt.Errorf("PLANNER_USER_ID %q is not a UUID: %w", cfg.UserID, err)
	}
	if cfg.OutboxBatchSize <= 0 {
		return nil, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", cfg.OutboxBatchSize)
	}

	return cfg, nil
}

// DefaultUser returns the parsed UserID. Load has already validated it.
func (c *Config) DefaultUser() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

// SuggestionsEnabled reports whether an LLM endpoint is configured.
func (c *Config) SuggestionsEnabled() bool {
	return strings.TrimSpace(c.LLMAPIURL) != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
