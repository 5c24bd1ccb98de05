package domain

import (
	sharedDomain "github.com/felixgeelhaar/memoryplanner/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "DailyPlan"

	RoutingKeyPlanGenerated = "planning.plan.generated"
	RoutingKeyItemCompleted = "planning.item.completed"
	RoutingKeyItemReopened  = "planning.item.reopened"
)

// PlanGenerated is raised whenever a plan snapshot is (re)built.
type PlanGenerated struct {
	sharedDomain.BaseEvent
	UserID           uuid.UUID `json:"user_id"`
	PlanDate         Date      `json:"plan_date"`
	ItemCount        int       `json:"item_count"`
	AvailableMinutes int       `json:"available_minutes"`
	Intensity        Intensity `json:"intensity"`
	Style            Style     `json:"style"`
}

// ItemStatusChanged is raised when the user ticks or unticks an item.
type ItemStatusChanged struct {
	sharedDomain.BaseEvent
	UserID    uuid.UUID `json:"user_id"`
	PlanDate  Date      `json:"plan_date"`
	ItemID    uuid.UUID `json:"item_id"`
	SourceID  uuid.UUID `json:"source_id"`
	ItemType  ItemType  `json:"item_type"`
	Completed bool      `json:"completed"`
}

func newPlanGenerated(p *DailyPlan) *PlanGenerated {
	return &PlanGenerated{
		BaseEvent:        sharedDomain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyPlanGenerated),
		UserID:           p.userID,
		PlanDate:         p.date,
		ItemCount:        len(p.items),
		AvailableMinutes: p.availableMinutes,
		Intensity:        p.intensity,
		Style:            p.style,
	}
}

func newItemStatusChanged(p *DailyPlan, item ScheduleItem) *ItemStatusChanged {
	key := RoutingKeyItemReopened
	if item.Completed {
		key = RoutingKeyItemCompleted
	}
	return &ItemStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(p.ID(), AggregateType, key),
		UserID:    p.userID,
		PlanDate:  p.date,
		ItemID:    item.ID,
		SourceID:  item.SourceID,
		ItemType:  item.Type,
		Completed: item.Completed,
	}
}
