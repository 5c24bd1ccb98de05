package domain

import "github.com/google/uuid"

// CustomActivity is a fixed-duration activity the user picked for the day.
type CustomActivity struct {
	ID           uuid.UUID
	Title        string
	Description  string
	DurationText string
	CanCombine   bool
}

// AppendActivities places activities after the task pass. They only have
// to fit the budget and the window: work hours and blocked slots are the
// user's call. An activity that does not fit is skipped and the next one
// is tried.
func (e *Engine) AppendActivities(day Day, state CursorState, activities []CustomActivity) ([]ScheduleItem, CursorState, []Rejection) {
	var items []ScheduleItem
	var skipped []Rejection

	for _, a := range activities {
		duration := ParseDuration(a.DurationText)

		var reason RejectReason
		switch {
		case state.Consumed+duration > day.Availability.AvailableMinutes:
			reason = RejectBudgetExceeded
		case state.Cursor.Add(duration) > day.Availability.WindowEnd:
			reason = RejectWindowExceeded
		}
		if reason != "" {
			e.tracer.Trace(TraceEvent{Step: TraceActivitySkipped, TaskID: a.ID, Title: a.Title, Cursor: state.Cursor, Consumed: state.Consumed, Reason: reason})
			skipped = append(skipped, Rejection{SourceID: a.ID, Title: a.Title, Reason: reason})
			continue
		}

		items = append(items, ScheduleItem{
			ID:              e.newID(),
			SourceID:        a.ID,
			Type:            ItemTypeCustomActivity,
			Title:           a.Title,
			Description:     a.Description,
			ScheduledTime:   state.Cursor,
			DurationMinutes: duration,
			DurationText:    a.DurationText,
			CanCombine:      a.CanCombine,
		})
		e.tracer.Trace(TraceEvent{Step: TracePlaced, TaskID: a.ID, Title: a.Title, Cursor: state.Cursor, Consumed: state.Consumed})

		state.Cursor = state.Cursor.Add(duration + day.Intensity.GapMinutes())
		state.Consumed += duration + day.Intensity.GapMinutes()
		if brk, after, ok := e.maybeBreak(day, state); ok {
			items = append(items, brk)
			state = after
		}
	}
	return items, state, skipped
}
