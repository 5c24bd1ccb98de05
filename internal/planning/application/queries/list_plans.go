package queries

import (
	"context"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// DefaultRangeDays is one week.
const DefaultRangeDays = 7

// ListPlansQuery selects the plans of Days consecutive dates from From.
type ListPlansQuery struct {
	UserID uuid.UUID
	From   domain.Date
	Days   int
}

// DaySummaryDTO is one date of a range view. Plan is nil for dates with
// no generated plan.
type DaySummaryDTO struct {
	Date    string   `json:"date"`
	Weekday string   `json:"weekday"`
	Plan    *PlanDTO `json:"plan,omitempty"`
}

// ListPlansHandler handles the ListPlansQuery.
type ListPlansHandler struct {
	plans domain.PlanRepository
}

// NewListPlansHandler creates a new ListPlansHandler.
func NewListPlansHandler(plans domain.PlanRepository) *ListPlansHandler {
	return &ListPlansHandler{plans: plans}
}

// Handle returns one entry per date in the range, in date order.
func (h *ListPlansHandler) Handle(ctx context.Context, query ListPlansQuery) ([]DaySummaryDTO, error) {
	days := query.Days
	if days <= 0 {
		days = DefaultRangeDays
	}
	to := query.From.AddDays(days - 1)

	plans, err := h.plans.ListRange(ctx, query.UserID, query.From, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[domain.Date]*domain.DailyPlan, len(plans))
	for _, plan := range plans {
		byDate[plan.Date()] = plan
	}

	out := make([]DaySummaryDTO, 0, days)
	for i := 0; i < days; i++ {
		date := query.From.AddDays(i)
		summary := DaySummaryDTO{Date: date.String(), Weekday: date.Weekday().String()}
		if plan, ok := byDate[date]; ok {
			dto := ToPlanDTO(plan)
			summary.Plan = &dto
		}
		out = append(out, summary)
	}
	return out, nil
}
