package queries

import (
	"context"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// GetPlanQuery selects the plan of one user and date.
type GetPlanQuery struct {
	UserID uuid.UUID
	Date   domain.Date
}

// GetPlanHandler handles the GetPlanQuery.
type GetPlanHandler struct {
	plans domain.PlanRepository
}

// NewGetPlanHandler creates a new GetPlanHandler.
func NewGetPlanHandler(plans domain.PlanRepository) *GetPlanHandler {
	return &GetPlanHandler{plans: plans}
}

// Handle returns domain.ErrPlanNotFound when no plan was generated yet.
func (h *GetPlanHandler) Handle(ctx context.Context, query GetPlanQuery) (*PlanDTO, error) {
	plan, err := h.plans.FindByDate(ctx, query.UserID, query.Date)
	if err != nil {
		return nil, err
	}
	dto := ToPlanDTO(plan)
	return &dto, nil
}
