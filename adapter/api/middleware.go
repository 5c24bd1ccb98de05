package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
	headerUserID        = "X-User-ID"

	userIDKey = "planner.user_id"
)

// requestContext attaches request and correlation IDs to the request
// context and echoes them back.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := observability.NewRequestContext(c.Request.Context(), c.GetHeader(headerCorrelationID))
		c.Request = c.Request.WithContext(ctx)
		c.Header(headerCorrelationID, observability.CorrelationIDFromContext(ctx))
		c.Header(headerRequestID, observability.RequestIDFromContext(ctx))
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			observability.StatusKey, c.Writer.Status(),
			observability.DurationKey, time.Since(start).Milliseconds(),
			observability.CorrelationIDKey, observability.CorrelationIDFromContext(ctx),
			observability.RequestIDKey, observability.RequestIDFromContext(ctx),
			"client_ip", c.ClientIP(),
		)
	}
}

// requestMetrics labels by route template to keep cardinality bounded.
func requestMetrics(metrics observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.Counter(observability.MetricHTTPRequests, 1,
			observability.T("method", c.Request.Method),
			observability.T("path", path),
			observability.T("status", strconv.Itoa(c.Writer.Status())),
		)
		metrics.Timing(observability.MetricHTTPDuration, time.Since(start),
			observability.T("method", c.Request.Method),
			observability.T("path", path),
		)
	}
}

// requireUser resolves the acting user from X-User-ID, falling back to
// fallback when the header is absent.
func requireUser(fallback uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerUserID)
		userID := fallback
		if raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				abortWithError(c, ErrUnauthorized)
				return
			}
			userID = id
		}
		if userID == uuid.Nil {
			abortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(observability.WithUserID(c.Request.Context(), userID.String()))
		c.Next()
	}
}

func currentUser(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(uuid.UUID)
	return userID
}
