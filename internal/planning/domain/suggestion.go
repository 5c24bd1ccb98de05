package domain

import (
	"context"

	"github.com/google/uuid"
)

// MinItemsForSuggestion is the plan size below which no suggestion is asked.
const MinItemsForSuggestion = 4

// TimeOfDay buckets the cursor for the suggestion prompt.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	LateNight TimeOfDay = "late_night"
)

// TimeOfDayAt buckets c: morning before 12:00, afternoon before 18:00,
// evening before 22:00, late night otherwise.
func TimeOfDayAt(c Clock) TimeOfDay {
	switch h := int(c) % MinutesPerDay / 60; {
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	case h < 22:
		return Evening
	default:
		return LateNight
	}
}

// Suggestion is one relaxing activity proposed for the end of the plan.
type Suggestion struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DurationText string    `json:"duration"`
	Location     *Location `json:"location,omitempty"`
}

// SuggestionRequest is what the suggester sees of the user's day.
type SuggestionRequest struct {
	UserID       uuid.UUID
	Date         Date
	TimeOfDay    TimeOfDay
	Cursor       Clock
	PlanTitles   []string
	City         string
	Locations    []Location
	ContextNotes string
}

// Suggester proposes an activity. Implementations call external services
// and may fail; callers treat any error as no suggestion.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error)
}

// PlaceSuggestion puts s at the cursor when it fits the remaining budget
// and ends inside the window.
func (e *Engine) PlaceSuggestion(day Day, state CursorState, s Suggestion) (ScheduleItem, CursorState, bool) {
	duration := ParseDuration(s.DurationText)
	if state.Consumed+duration > day.Availability.AvailableMinutes {
		e.tracer.Trace(TraceEvent{Step: TraceActivitySkipped, Title: s.Title, Cursor: state.Cursor, Consumed: state.Consumed, Reason: RejectBudgetExceeded})
		return ScheduleItem{}, state, false
	}
	if state.Cursor.Add(duration) > day.Availability.WindowEnd {
		e.tracer.Trace(TraceEvent{Step: TraceActivitySkipped, Title: s.Title, Cursor: state.Cursor, Reason: RejectWindowExceeded})
		return ScheduleItem{}, state, false
	}

	item := ScheduleItem{
		ID:              e.newID(),
		Type:            ItemTypeSuggestedActivity,
		Title:           s.Title,
		Description:     s.Description,
		ScheduledTime:   state.Cursor,
		DurationMinutes: duration,
		DurationText:    s.DurationText,
		Location:        s.Location,
	}
	next := state
	next.Cursor = state.Cursor.Add(duration)
	next.Consumed += duration
	return item, next, true
}
