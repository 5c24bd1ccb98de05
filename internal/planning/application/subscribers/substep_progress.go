// Package subscribers reacts to planning events delivered by the event bus.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// SubstepProgressSubscriber mirrors ticked plan items onto the sub-steps
// they were planned from. Habit trackers recur daily and keep their status.
type SubstepProgressSubscriber struct {
	tasks  domain.TaskSource
	logger *slog.Logger
}

func NewSubstepProgressSubscriber(tasks domain.TaskSource, logger *slog.Logger) *SubstepProgressSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubstepProgressSubscriber{tasks: tasks, logger: logger}
}

func (s *SubstepProgressSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyItemCompleted, domain.RoutingKeyItemReopened}
}

type itemStatusPayload struct {
	UserID    uuid.UUID       `json:"user_id"`
	SourceID  uuid.UUID       `json:"source_id"`
	ItemType  domain.ItemType `json:"item_type"`
	Completed bool            `json:"completed"`
}

func (s *SubstepProgressSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload itemStatusPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
	}
	if payload.ItemType != domain.ItemTypeSubstep || payload.SourceID == uuid.Nil {
		return nil
	}

	status := domain.TaskStatusPending
	if payload.Completed {
		status = domain.TaskStatusCompleted
	}
	if err := s.tasks.SetStatus(ctx, payload.UserID, payload.SourceID, status); err != nil {
		return fmt.Errorf("update sub-step %s: %w", payload.SourceID, err)
	}

	s.logger.DebugContext(ctx, "sub-step status updated",
		"substep_id", payload.SourceID,
		"status", status,
		"event_id", event.EventID,
	)
	return nil
}
