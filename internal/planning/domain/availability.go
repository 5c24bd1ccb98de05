package domain

import "math"

// WorkHours are the employer's hours. The zero value means none.
type WorkHours struct {
	Start Clock
	End   Clock
}

func (w WorkHours) IsZero() bool { return w.Start == 0 && w.End == 0 }

// Contains reports whether c falls in [Start, End).
func (w WorkHours) Contains(c Clock) bool {
	return !w.IsZero() && c >= w.Start && c < w.End
}

// normalized moves the end of an overnight shift past midnight.
func (w WorkHours) normalized() WorkHours {
	if !w.IsZero() && w.End <= w.Start {
		w.End += MinutesPerDay
	}
	return w
}

// Overlaps reports whether [start, end) intersects the work hours.
func (w WorkHours) Overlaps(start, end Clock) bool {
	return !w.IsZero() && start < w.End && end > w.Start
}

// AvailabilityInput is the part of the profile that bounds a day.
type AvailabilityInput struct {
	WakeUp         Clock
	Sleep          Clock
	MorningRoutine int
	NightRoutine   int
	Work           WorkHours
	Intensity      Intensity
	IsToday        bool
	Now            Clock
}

// Availability is the budget and window tasks are placed into.
type Availability struct {
	MorningMinutes   int
	EveningMinutes   int
	AvailableMinutes int
	WindowStart      Clock
	WindowEnd        Clock
}

// IsEmpty reports a window with no room at all.
func (a Availability) IsEmpty() bool { return a.WindowStart >= a.WindowEnd }

// CalculateAvailability derives the day's budget and window. A sleep time
// at or before the wake time is read as after midnight.
func CalculateAvailability(in AvailabilityInput) Availability {
	sleep := in.Sleep
	if sleep <= in.WakeUp {
		sleep += MinutesPerDay
	}
	work := in.Work.normalized()

	dayStart := in.WakeUp.Add(in.MorningRoutine)
	dayEnd := sleep.Add(-in.NightRoutine)

	var a Availability
	if work.IsZero() {
		a.MorningMinutes = max(0, dayEnd.Sub(dayStart))
	} else {
		a.MorningMinutes = max(0, work.Start.Sub(dayStart))
		a.EveningMinutes = max(0, dayEnd.Sub(work.End))
	}
	a.AvailableMinutes = int(math.Floor(float64(a.MorningMinutes+a.EveningMinutes) * in.Intensity.WorkRatio()))

	a.WindowStart = dayStart
	if in.IsToday && in.Now > dayStart {
		a.WindowStart = in.Now
	}
	if in.IsToday && work.Contains(a.WindowStart) {
		a.WindowStart = work.End
	}
	a.WindowEnd = dayEnd
	return a
}
