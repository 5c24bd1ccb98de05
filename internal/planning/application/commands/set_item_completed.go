package commands

import (
	"context"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/memoryplanner/internal/shared/application"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
)

// SetItemCompletedCommand ticks or unticks one plan item.
type SetItemCompletedCommand struct {
	UserID    uuid.UUID
	Date      domain.Date
	ItemID    uuid.UUID
	Completed bool
}

// SetItemCompletedResult reports the item after the change. Changed is
// false when the item already had the requested state.
type SetItemCompletedResult struct {
	Item    domain.ScheduleItem
	Changed bool
}

// SetItemCompletedHandler handles the SetItemCompletedCommand.
type SetItemCompletedHandler struct {
	plans      domain.PlanRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	metrics    observability.Metrics
}

// NewSetItemCompletedHandler creates a new SetItemCompletedHandler.
func NewSetItemCompletedHandler(plans domain.PlanRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SetItemCompletedHandler {
	return &SetItemCompletedHandler{
		plans:      plans,
		outboxRepo: outboxRepo,
		uow:        uow,
		metrics:    observability.NoopMetrics{},
	}
}

func (h *SetItemCompletedHandler) WithMetrics(m observability.Metrics) *SetItemCompletedHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the SetItemCompletedCommand.
func (h *SetItemCompletedHandler) Handle(ctx context.Context, cmd SetItemCompletedCommand) (*SetItemCompletedResult, error) {
	var result *SetItemCompletedResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		plan, err := h.plans.FindByDate(txCtx, cmd.UserID, cmd.Date)
		if err != nil {
			return err
		}
		if err := plan.SetItemCompleted(cmd.ItemID, cmd.Completed); err != nil {
			return err
		}

		item, _ := findItem(plan, cmd.ItemID)
		events := plan.DomainEvents()
		result = &SetItemCompletedResult{Item: item, Changed: len(events) > 0}
		if !result.Changed {
			return nil
		}

		if err := h.plans.UpdateItemCompleted(txCtx, plan, cmd.ItemID); err != nil {
			return err
		}

		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.UserID))
		msgs, err := outbox.MessagesFor(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	if result.Changed && cmd.Completed {
		h.metrics.Counter(observability.MetricItemsCompleted, 1, observability.T("item_type", string(result.Item.Type)))
	}
	return result, nil
}

func findItem(plan *domain.DailyPlan, itemID uuid.UUID) (domain.ScheduleItem, bool) {
	for _, item := range plan.Items() {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.ScheduleItem{}, false
}
