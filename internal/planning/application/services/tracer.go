package services

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// SlogTracer writes engine decisions as debug records. The context given at
// construction supplies correlation attributes.
type SlogTracer struct {
	ctx    context.Context
	logger *slog.Logger
}

func NewSlogTracer(ctx context.Context, logger *slog.Logger) *SlogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracer{ctx: ctx, logger: logger}
}

func (t *SlogTracer) Trace(e domain.TraceEvent) {
	if !t.logger.Enabled(t.ctx, slog.LevelDebug) {
		return
	}
	attrs := []slog.Attr{
		slog.String("step", string(e.Step)),
		slog.String("cursor", e.Cursor.String()),
		slog.Int("consumed", e.Consumed),
	}
	if e.TaskID != uuid.Nil {
		attrs = append(attrs, slog.String("task_id", e.TaskID.String()))
	}
	if e.Title != "" {
		attrs = append(attrs, slog.String("title", e.Title))
	}
	if e.Attempt > 0 {
		attrs = append(attrs, slog.Int("attempt", e.Attempt))
	}
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", string(e.Reason)))
	}
	t.logger.LogAttrs(t.ctx, slog.LevelDebug, "engine decision", attrs...)
}
