package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(title, duration string) CustomActivity {
	return CustomActivity{ID: uuid.New(), Title: title, DurationText: duration}
}

func TestEngine_AppendActivities(t *testing.T) {
	day := Day{
		Availability: Availability{AvailableMinutes: 200, WindowStart: At(18, 0), WindowEnd: At(23, 0)},
		Intensity:    IntensityModerate,
	}

	t.Run("skips what exceeds the budget and keeps going", func(t *testing.T) {
		state := CursorState{Cursor: At(20, 0), Consumed: 110, LastBreakAt: 110}
		long, short := activity("cinema", "2h"), activity("walk", "45min")

		items, next, skipped := NewEngine().AppendActivities(day, state, []CustomActivity{long, short})

		require.Len(t, items, 1)
		assert.Equal(t, short.ID, items[0].SourceID)
		assert.Equal(t, ItemTypeCustomActivity, items[0].Type)
		assert.Equal(t, At(20, 0), items[0].ScheduledTime)
		assert.Equal(t, 45, items[0].DurationMinutes)
		assert.Equal(t, CursorState{Cursor: At(20, 50), Consumed: 160, LastBreakAt: 110}, next)
		assert.Equal(t, []Rejection{{SourceID: long.ID, Title: "cinema", Reason: RejectBudgetExceeded}}, skipped)
	})

	t.Run("skips what runs past the window", func(t *testing.T) {
		state := CursorState{Cursor: At(22, 0), Consumed: 20, LastBreakAt: 20}
		late, quick := activity("bath", "45min"), activity("tea", "20min")

		items, _, skipped := NewEngine().AppendActivities(day, state, []CustomActivity{late, quick})

		require.Len(t, items, 1)
		assert.Equal(t, "tea", items[0].Title)
		assert.Equal(t, At(22, 0), items[0].ScheduledTime)
		require.Len(t, skipped, 1)
		assert.Equal(t, RejectWindowExceeded, skipped[0].Reason)
	})

	t.Run("takes a break after a long stretch", func(t *testing.T) {
		state := CursorState{Cursor: At(19, 0), Consumed: 40}
		items, next, _ := NewEngine().AppendActivities(day, state, []CustomActivity{activity("piano", "30min")})

		require.Len(t, items, 2)
		assert.True(t, items[1].IsBreak())
		assert.Equal(t, At(19, 35), items[1].ScheduledTime)
		assert.Equal(t, 1, next.Breaks)
	})

	t.Run("nothing to place", func(t *testing.T) {
		state := NewCursorState(At(18, 0))
		items, next, skipped := NewEngine().AppendActivities(day, state, nil)

		assert.Empty(t, items)
		assert.Empty(t, skipped)
		assert.Equal(t, state, next)
	})
}

func TestEngine_Run_AppendsActivitiesAfterTasks(t *testing.T) {
	in := eveningOnly(task("write chapter", "60min", 90))
	in.Activities = []CustomActivity{activity("yoga", "30min")}

	result := NewEngine().Run(in)

	assert.Equal(t, []string{"write chapter", "Break", "yoga"}, itemTitles(result.Items))
	assert.Equal(t, At(19, 15), result.Items[2].ScheduledTime)
}
