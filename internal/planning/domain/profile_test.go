package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProfile_WorkHoursOn(t *testing.T) {
	profile := DefaultProfile(uuid.New())

	assert.Equal(t, WorkHours{Start: At(9, 0), End: At(18, 0)}, profile.WorkHoursOn(time.Friday))
	assert.True(t, profile.WorkHoursOn(time.Saturday).IsZero())

	profile.WorkDays = nil
	assert.False(t, profile.WorkHoursOn(time.Sunday).IsZero())
}

func TestProfile_PlanInput(t *testing.T) {
	profile := DefaultProfile(uuid.New())
	now := time.Date(2025, time.March, 14, 8, 30, 0, 0, time.UTC)
	inputs := Inputs{Tasks: []SchedulableTask{task("read", "20min", 50)}}

	t.Run("today", func(t *testing.T) {
		in := profile.PlanInput(planDate, now, inputs)

		assert.True(t, in.IsToday)
		assert.Equal(t, At(8, 30), in.Now)
		assert.Equal(t, profile.Work, in.Work)
		assert.Len(t, in.Tasks, 1)
	})

	t.Run("weekend ahead", func(t *testing.T) {
		in := profile.PlanInput(planDate.AddDays(1), now, inputs)

		assert.False(t, in.IsToday)
		assert.True(t, in.Work.IsZero())
		assert.Equal(t, DefaultBreakFrequency, in.BreakFrequency)
	})
}
