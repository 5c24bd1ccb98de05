package domain

import (
	"errors"
	"slices"
	"time"
)

var ErrInvalidInterval = errors.New("blocked interval must end after it starts")

// BlockedInterval is a recurring slot the user keeps free. An empty Days
// set applies every day.
type BlockedInterval struct {
	Start Clock
	End   Clock
	Days  []time.Weekday
	Label string
}

// NewBlockedInterval validates Start < End.
func NewBlockedInterval(start, end Clock, days []time.Weekday, label string) (BlockedInterval, error) {
	if end <= start {
		return BlockedInterval{}, ErrInvalidInterval
	}
	return BlockedInterval{Start: start, End: end, Days: days, Label: label}, nil
}

// AppliesOn reports whether the interval is active on day.
func (b BlockedInterval) AppliesOn(day time.Weekday) bool {
	return len(b.Days) == 0 || slices.Contains(b.Days, day)
}

// Overlaps reports any intersection of [start, end) with the interval.
func (b BlockedInterval) Overlaps(start, end Clock) bool {
	return start < b.End && end > b.Start
}

// ActiveOn keeps the intervals that apply on day.
func ActiveOn(intervals []BlockedInterval, day time.Weekday) []BlockedInterval {
	var out []BlockedInterval
	for _, b := range intervals {
		if b.AppliesOn(day) {
			out = append(out, b)
		}
	}
	return out
}

// IsBlocked reports whether [start, start+duration) hits any interval.
// Callers filter intervals by weekday first.
func IsBlocked(start Clock, duration int, intervals []BlockedInterval) bool {
	end := start.Add(duration)
	for _, b := range intervals {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
