package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Profile holds a user's daily rhythm and planning preferences.
type Profile struct {
	UserID         uuid.UUID
	WakeUp         Clock
	Sleep          Clock
	MorningRoutine int
	NightRoutine   int
	Work           WorkHours
	WorkDays       []time.Weekday
	BreakFrequency int
	DailyWorkHours int
	Intensity      Intensity
	Style          Style
	City           string
	ContextNotes   string
	AutoPlan       bool
}

// DefaultProfile is used for users who never saved settings.
func DefaultProfile(userID uuid.UUID) Profile {
	return Profile{
		UserID:         userID,
		WakeUp:         At(7, 0),
		Sleep:          At(23, 0),
		MorningRoutine: 30,
		NightRoutine:   30,
		Work:           WorkHours{Start: At(9, 0), End: At(18, 0)},
		WorkDays:       []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		BreakFrequency: DefaultBreakFrequency,
		DailyWorkHours: 8,
		Intensity:      IntensityModerate,
		Style:          StyleMixed,
	}
}

// WorkHoursOn returns the employer hours for day. An empty WorkDays set
// means every day is a work day.
func (p Profile) WorkHoursOn(day time.Weekday) WorkHours {
	if len(p.WorkDays) == 0 || slices.Contains(p.WorkDays, day) {
		return p.Work
	}
	return WorkHours{}
}

// Inputs are the fetched records a plan is built from.
type Inputs struct {
	Tasks      []SchedulableTask
	Blocked    []BlockedInterval
	Activities []CustomActivity
}

// PlanInput assembles the engine input for date as seen at now.
func (p Profile) PlanInput(date Date, now time.Time, in Inputs) PlanInput {
	return PlanInput{
		Date:           date,
		Now:            At(now.Hour(), now.Minute()),
		IsToday:        DateOf(now) == date,
		WakeUp:         p.WakeUp,
		Sleep:          p.Sleep,
		MorningRoutine: p.MorningRoutine,
		NightRoutine:   p.NightRoutine,
		Work:           p.WorkHoursOn(date.Weekday()),
		Intensity:      p.Intensity,
		Style:          p.Style,
		BreakFrequency: p.BreakFrequency,
		Tasks:          in.Tasks,
		Blocked:        in.Blocked,
		Activities:     in.Activities,
	}
}
