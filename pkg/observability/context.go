package observability

import (
	"context"

	"github.com/google/uuid"
)

type scopeKey int

const (
	correlationScope scopeKey = iota
	requestScope
	userScope
	operationScope
	planDateScope
)

// Attribute keys shared by log records and metric tags.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	UserIDKey        = "user_id"
	OperationKey     = "operation"
	PlanDateKey      = "plan_date"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

func withScope(ctx context.Context, key scopeKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func scopeValue(ctx context.Context, key scopeKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithCorrelationID scopes ctx to id, or to a fresh UUID when id is empty.
// The correlation ID follows a request across the outbox and the broker.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return withScope(ctx, correlationScope, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return scopeValue(ctx, correlationScope)
}

// WithRequestID scopes ctx to id, or to a fresh UUID when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return withScope(ctx, requestScope, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return scopeValue(ctx, requestScope)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withScope(ctx, userScope, userID)
}

func UserIDFromContext(ctx context.Context) string {
	return scopeValue(ctx, userScope)
}

// WithOperation names the job or command running under ctx.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withScope(ctx, operationScope, operation)
}

func OperationFromContext(ctx context.Context) string {
	return scopeValue(ctx, operationScope)
}

// WithPlanDate scopes ctx to the YYYY-MM-DD date being planned.
func WithPlanDate(ctx context.Context, date string) context.Context {
	return withScope(ctx, planDateScope, date)
}

func PlanDateFromContext(ctx context.Context) string {
	return scopeValue(ctx, planDateScope)
}

// NewRequestContext starts a request: a new request ID, and the parent's
// correlation ID when there is one.
func NewRequestContext(ctx context.Context, parentCorrelationID string) context.Context {
	return WithCorrelationID(WithRequestID(ctx, ""), parentCorrelationID)
}
