package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ProfileRepository implements domain.ProfileRepository.
type ProfileRepository struct {
	conn database.Connection
}

func NewProfileRepository(conn database.Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

const selectProfile = `
	SELECT user_id, wake_up_time, sleep_time, morning_routine_minutes, night_routine_minutes,
	       work_start, work_end, work_days, daily_work_hours, break_frequency_minutes,
	       intensity, style, city, context_notes, auto_plan
	FROM profiles`

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p                        domain.Profile
		userID, wake, sleep      string
		workStart, workEnd, days string
		dailyWorkHours           float64
		intensity, style         string
	)
	if err := row.Scan(&userID, &wake, &sleep, &p.MorningRoutine, &p.NightRoutine, &workStart, &workEnd,
		&days, &dailyWorkHours, &p.BreakFrequency, &intensity, &style, &p.City, &p.ContextNotes, &p.AutoPlan); err != nil {
		return nil, err
	}

	var err error
	p.UserID = parseUUID(userID)
	if p.WakeUp, err = domain.ParseClock(wake); err != nil {
		return nil, fmt.Errorf("profile %s wake_up_time: %w", userID, err)
	}
	if p.Sleep, err = domain.ParseClock(sleep); err != nil {
		return nil, fmt.Errorf("profile %s sleep_time: %w", userID, err)
	}
	if p.Work, err = parseWorkHours(workStart, workEnd); err != nil {
		return nil, fmt.Errorf("profile %s work hours: %w", userID, err)
	}
	if p.WorkDays, err = parseWeekdays(days); err != nil {
		return nil, fmt.Errorf("profile %s work_days: %w", userID, err)
	}
	p.DailyWorkHours = int(dailyWorkHours)
	p.Intensity = domain.ParseIntensity(intensity)
	p.Style = domain.ParseStyle(style)
	return &p, nil
}

// FindByUserID returns (nil, nil) for a user who never saved settings.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		selectProfile+` WHERE user_id = $1`, userID.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p domain.Profile) error {
	workStart, workEnd := formatWorkHours(p.Work)
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO profiles (
			user_id, wake_up_time, sleep_time, morning_routine_minutes, night_routine_minutes,
			work_start, work_end, work_days, daily_work_hours, break_frequency_minutes,
			intensity, style, city, context_notes, auto_plan, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id) DO UPDATE SET
			wake_up_time = excluded.wake_up_time,
			sleep_time = excluded.sleep_time,
			morning_routine_minutes = excluded.morning_routine_minutes,
			night_routine_minutes = excluded.night_routine_minutes,
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			work_days = excluded.work_days,
			daily_work_hours = excluded.daily_work_hours,
			break_frequency_minutes = excluded.break_frequency_minutes,
			intensity = excluded.intensity,
			style = excluded.style,
			city = excluded.city,
			context_notes = excluded.context_notes,
			auto_plan = excluded.auto_plan,
			updated_at = excluded.updated_at`,
		p.UserID.String(), formatClock(p.WakeUp), formatClock(p.Sleep), p.MorningRoutine, p.NightRoutine,
		workStart, workEnd, formatWeekdays(p.WorkDays), float64(p.DailyWorkHours), p.BreakFrequency,
		string(p.Intensity), string(p.Style), p.City, p.ContextNotes, p.AutoPlan, formatTime(time.Now()),
	)
	return err
}

// ListAutoPlan returns the profiles that ask for a nightly plan.
func (r *ProfileRepository) ListAutoPlan(ctx context.Context) ([]domain.Profile, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		selectProfile+` WHERE auto_plan = $1 ORDER BY user_id`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
