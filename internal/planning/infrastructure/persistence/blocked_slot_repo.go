package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// BlockedSlotRepository implements domain.BlockedSlotSource.
type BlockedSlotRepository struct {
	conn database.Connection
}

func NewBlockedSlotRepository(conn database.Connection) *BlockedSlotRepository {
	return &BlockedSlotRepository{conn: conn}
}

func (r *BlockedSlotRepository) ListBlocked(ctx context.Context, userID uuid.UUID) ([]domain.BlockedInterval, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, label, start_time, end_time, days_of_week
		FROM blocked_slots
		WHERE user_id = $1
		ORDER BY start_time`,
		userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BlockedInterval
	for rows.Next() {
		var id, label, start, end, days string
		if err := rows.Scan(&id, &label, &start, &end, &days); err != nil {
			return nil, err
		}
		interval, err := decodeInterval(start, end, days, label)
		if err != nil {
			return nil, fmt.Errorf("blocked slot %s: %w", id, err)
		}
		out = append(out, interval)
	}
	return out, rows.Err()
}

// Add stores a new blocked interval for userID.
func (r *BlockedSlotRepository) Add(ctx context.Context, userID uuid.UUID, b domain.BlockedInterval) (uuid.UUID, error) {
	id := uuid.New()
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO blocked_slots (id, user_id, label, start_time, end_time, days_of_week)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id.String(), userID.String(), b.Label, formatClock(b.Start), formatClock(b.End), formatWeekdays(b.Days))
	return id, err
}

func decodeInterval(start, end, days, label string) (domain.BlockedInterval, error) {
	s, err := domain.ParseClock(start)
	if err != nil {
		return domain.BlockedInterval{}, err
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return domain.BlockedInterval{}, err
	}
	weekdays, err := parseWeekdays(days)
	if err != nil {
		return domain.BlockedInterval{}, err
	}
	return domain.NewBlockedInterval(s, e, weekdays, label)
}
