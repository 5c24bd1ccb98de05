package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrGenerationInProgress = errors.New("plan generation already in progress")

// PlanRepository stores one plan per user and date.
type PlanRepository interface {
	// Save inserts or replaces the plan for (user, date) with its items.
	Save(ctx context.Context, plan *DailyPlan) error
	FindByDate(ctx context.Context, userID uuid.UUID, date Date) (*DailyPlan, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to Date) ([]*DailyPlan, error)
	// UpdateItemCompleted persists one toggled flag.
	UpdateItemCompleted(ctx context.Context, plan *DailyPlan, itemID uuid.UUID) error
}

// ProfileRepository loads planning settings. A missing profile is reported
// as (nil, nil).
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, profile Profile) error
	ListAutoPlan(ctx context.Context) ([]Profile, error)
}

// TaskSource lists the sub-steps still open for a user, with project
// priority already computed for date.
type TaskSource interface {
	ListSchedulable(ctx context.Context, userID uuid.UUID, date Date) ([]SchedulableTask, error)
	// SetStatus marks the sub-step behind a plan item.
	SetStatus(ctx context.Context, userID, taskID uuid.UUID, status TaskStatus) error
}

// BlockedSlotSource lists a user's recurring blocked intervals.
type BlockedSlotSource interface {
	ListBlocked(ctx context.Context, userID uuid.UUID) ([]BlockedInterval, error)
}

// ActivitySource resolves the custom activities chosen for a plan.
type ActivitySource interface {
	ListActivities(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]CustomActivity, error)
}

// LocationSource lists reference places by city.
type LocationSource interface {
	ListLocations(ctx context.Context, city string) ([]Location, error)
}

// GenerationLocker serializes plan generation per user and date. Release
// must be called with the token Acquire returned.
type GenerationLocker interface {
	Acquire(ctx context.Context, userID uuid.UUID, date Date, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, userID uuid.UUID, date Date, token string) error
}
