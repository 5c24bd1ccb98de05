// Package api provides the HTTP API of the planner.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server.
type Server struct {
	engine *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// DefaultUserID serves requests without an X-User-ID header. Zero
	// rejects them.
	DefaultUserID uuid.UUID
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Dependencies are the collaborators the routes need. Health, Gatherer and
// Metrics are optional.
type Dependencies struct {
	Plans    *PlanHandler
	Health   *observability.HealthRegistry
	Gatherer prometheus.Gatherer
	Metrics  observability.Metrics
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestContext(), accessLog(logger), requestMetrics(deps.Metrics))

	s := &Server{engine: engine, logger: logger}
	s.registerRoutes(cfg, deps)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes(cfg ServerConfig, deps Dependencies) {
	s.engine.GET("/health", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.Plans == nil {
		return
	}
	v1 := s.engine.Group("/api/v1", requireUser(cfg.DefaultUserID))
	v1.GET("/plans", deps.Plans.ListPlans)
	v1.GET("/plans/:date", deps.Plans.GetPlan)
	v1.POST("/plans/:date/generate", deps.Plans.GeneratePlan)
	v1.PATCH("/plans/:date/items/:itemID", deps.Plans.SetItemCompleted)
}

func healthHandler(registry *observability.HealthRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if registry == nil {
			c.JSON(http.StatusOK, gin.H{
				"status": observability.HealthStatusHealthy,
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		health := registry.Check(c.Request.Context())
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting planner API server",
		"addr", s.server.Addr,
	)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down planner API server")
	return s.server.Shutdown(ctx)
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy of e with a specific message.
func (e *APIError) WithMessage(format string, args ...any) *APIError {
	out := *e
	out.Message = fmt.Sprintf(format, args...)
	return &out
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: "Missing or invalid X-User-ID header",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrConflict = &APIError{
		Status:  http.StatusConflict,
		Code:    "conflict",
		Message: "Plan generation already in progress",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

func abortWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status, err)
}

// timeNow is replaced in tests.
var timeNow = time.Now
