package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClock = errors.New("time of day must be HH:MM")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)

// MinutesPerDay is the length of a wall-clock day.
const MinutesPerDay = 24 * 60

// Clock is a naive wall-clock time as minutes since midnight. Values past
// MinutesPerDay describe times after midnight of the same planning day, as
// with a 01:00 bedtime.
type Clock int

// At builds a Clock from hour and minute.
func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock reads "HH:MM" or "HH:MM:SS"; seconds are ignored.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return At(h, m), nil
}

// MustParseClock is ParseClock for literals.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add moves the clock forward by minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// Sub returns the minutes between other and c.
func (c Clock) Sub(other Clock) int { return int(c - other) }

// String renders HH:MM, wrapping past midnight.
func (c Clock) String() string {
	v := int(c) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}

// Date is a calendar day without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf takes the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate reads YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.time().Format(time.DateOnly) }

func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

func (d Date) AddDays(n int) Date { return DateOf(d.time().AddDate(0, 0, n)) }

func (d Date) Before(other Date) bool { return d.time().Before(other.time()) }

// DaysUntil counts calendar days from d to other; negative when other is
// earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.time().Sub(d.time()).Hours() / 24)
}

// MarshalText renders YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
