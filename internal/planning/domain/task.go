package domain

import (
	"sort"

	"github.com/google/uuid"
)

// TaskStatus is the progress of a sub-step.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// SchedulableTask is a project sub-step offered to the engine.
type SchedulableTask struct {
	ID              uuid.UUID
	Title           string
	Description     string
	DurationText    string
	Status          TaskStatus
	TrackingEnabled bool
	ScheduledDate   *Date
	OrderIndex      int
	ProjectPriority int
	ProjectID       uuid.UUID
	ProjectTitle    string
	ProjectCategory string
}

// DurationMinutes parses DurationText.
func (t SchedulableTask) DurationMinutes() int { return ParseDuration(t.DurationText) }

// IsSchedulable is false for completed tasks.
func (t SchedulableTask) IsSchedulable() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}

// ItemType is tracker for habit tasks and substep otherwise.
func (t SchedulableTask) ItemType() ItemType {
	if t.TrackingEnabled {
		return ItemTypeTracker
	}
	return ItemTypeSubstep
}

// PriorityScore ranks t for a plan on date.
func PriorityScore(t SchedulableTask, date Date) int {
	score := t.ProjectPriority
	if t.ScheduledDate != nil {
		switch {
		case *t.ScheduledDate == date:
			score += 100
		case t.ScheduledDate.Before(date):
			score += 50
		}
	}
	if t.Status == TaskStatusInProgress {
		score += 30
	}
	if t.TrackingEnabled {
		score += 40
	}
	return score - 2*t.OrderIndex
}

// Prioritize returns the schedulable tasks by descending score. Equal scores
// keep their input order.
func Prioritize(tasks []SchedulableTask, date Date) []SchedulableTask {
	out := make([]SchedulableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsSchedulable() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return PriorityScore(out[i], date) > PriorityScore(out[j], date)
	})
	return out
}

// ProjectPriority buckets a project deadline relative to date.
func ProjectPriority(deadline *Date, date Date) int {
	if deadline == nil {
		return 50
	}
	days := date.DaysUntil(*deadline)
	switch {
	case days < 0:
		return 100
	case days <= 3:
		return 90
	case days <= 7:
		return 75
	case days <= 14:
		return 60
	default:
		return 50
	}
}

// GroupByCategory concatenates tasks grouped by project category, groups
// in order of first appearance.
func GroupByCategory(tasks []SchedulableTask) []SchedulableTask {
	var order []string
	groups := make(map[string][]SchedulableTask)
	for _, t := range tasks {
		if _, seen := groups[t.ProjectCategory]; !seen {
			order = append(order, t.ProjectCategory)
		}
		groups[t.ProjectCategory] = append(groups[t.ProjectCategory], t)
	}
	out := make([]SchedulableTask, 0, len(tasks))
	for _, category := range order {
		out = append(out, groups[category]...)
	}
	return out
}
