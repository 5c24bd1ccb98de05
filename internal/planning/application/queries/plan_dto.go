package queries

import (
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// PlanItemDTO is one row of a daily plan as shown to clients.
type PlanItemDTO struct {
	ID              uuid.UUID        `json:"id"`
	SourceID        *uuid.UUID       `json:"source_id,omitempty"`
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	StartTime       string           `json:"start_time"`
	EndTime         string           `json:"end_time"`
	DurationMinutes int              `json:"duration_minutes"`
	DurationText    string           `json:"duration_text,omitempty"`
	Priority        int              `json:"priority"`
	ProjectTitle    string           `json:"project_title,omitempty"`
	ProjectCategory string           `json:"project_category,omitempty"`
	Location        *domain.Location `json:"location,omitempty"`
	CanCombine      bool             `json:"can_combine,omitempty"`
	Completed       bool             `json:"completed"`
}

// PlanDTO is a data transfer object for daily plans.
type PlanDTO struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	Date             string        `json:"date"`
	AvailableMinutes int           `json:"available_minutes"`
	PlannedMinutes   int           `json:"planned_minutes"`
	Intensity        string        `json:"intensity"`
	Style            string        `json:"style"`
	GeneratedAt      time.Time     `json:"generated_at"`
	CompletedCount   int           `json:"completed_count"`
	Items            []PlanItemDTO `json:"items"`
}

// ToPlanDTO converts a plan aggregate.
func ToPlanDTO(plan *domain.DailyPlan) PlanDTO {
	items := plan.Items()
	dto := PlanDTO{
		ID:               plan.ID(),
		UserID:           plan.UserID(),
		Date:             plan.Date().String(),
		AvailableMinutes: plan.AvailableMinutes(),
		Intensity:        string(plan.Intensity()),
		Style:            string(plan.Style()),
		GeneratedAt:      plan.GeneratedAt(),
		CompletedCount:   plan.CompletedCount(),
		Items:            make([]PlanItemDTO, 0, len(items)),
	}
	for _, item := range items {
		if !item.IsBreak() {
			dto.PlannedMinutes += item.DurationMinutes
		}
		dto.Items = append(dto.Items, ToItemDTO(item))
	}
	return dto
}

// ToItemDTO converts one schedule item.
func ToItemDTO(item domain.ScheduleItem) PlanItemDTO {
	dto := PlanItemDTO{
		ID:              item.ID,
		Type:            string(item.Type),
		Title:           item.Title,
		Description:     item.Description,
		StartTime:       item.ScheduledTime.String(),
		EndTime:         item.End().String(),
		DurationMinutes: item.DurationMinutes,
		DurationText:    item.DurationText,
		Priority:        item.Priority,
		ProjectTitle:    item.ProjectTitle,
		ProjectCategory: item.ProjectCategory,
		Location:        item.Location,
		CanCombine:      item.CanCombine,
		Completed:       item.Completed,
	}
	if item.SourceID != uuid.Nil {
		id := item.SourceID
		dto.SourceID = &id
	}
	return dto
}
