// Package persistence stores planning data over either database driver.
package persistence

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func nullUUID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func parseNullUUID(s sql.NullString) uuid.UUID {
	if !s.Valid {
		return uuid.Nil
	}
	id, _ := uuid.Parse(s.String)
	return id
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseNullDate(s sql.NullString) (*domain.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// formatWeekdays stores days as comma separated time.Weekday numbers.
func formatWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func formatClock(c domain.Clock) string { return c.String() }

// formatWorkHours stores no work hours as two empty strings.
func formatWorkHours(w domain.WorkHours) (string, string) {
	if w.IsZero() {
		return "", ""
	}
	return formatClock(w.Start), formatClock(w.End)
}

func parseWorkHours(start, end string) (domain.WorkHours, error) {
	if start == "" && end == "" {
		return domain.WorkHours{}, nil
	}
	s, err := domain.ParseClock(start)
	if err != nil {
		return domain.WorkHours{}, err
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return domain.WorkHours{}, err
	}
	return domain.WorkHours{Start: s, End: e}, nil
}
