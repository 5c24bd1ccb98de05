package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ActivityRepository serves custom activities and the location catalogue.
type ActivityRepository struct {
	conn database.Connection
}

func NewActivityRepository(conn database.Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// ListActivities returns the user's activities among ids, in the order of
// ids. Unknown IDs are ignored.
func (r *ActivityRepository) ListActivities(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.CustomActivity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []any{userID.String()}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id.String())
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, title, description, duration_text, can_combine
		FROM custom_activities
		WHERE user_id = $1 AND id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]domain.CustomActivity, len(ids))
	for rows.Next() {
		var a domain.CustomActivity
		var id string
		if err := rows.Scan(&id, &a.Title, &a.Description, &a.DurationText, &a.CanCombine); err != nil {
			return nil, err
		}
		a.ID = parseUUID(id)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.CustomActivity, 0, len(byID))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddActivity stores a custom activity for userID.
func (r *ActivityRepository) AddActivity(ctx context.Context, userID uuid.UUID, a domain.CustomActivity) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO custom_activities (id, user_id, title, description, duration_text, can_combine)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID.String(), userID.String(), a.Title, a.Description, a.DurationText, a.CanCombine)
	return err
}

// ListLocations matches city case-insensitively.
func (r *ActivityRepository) ListLocations(ctx context.Context, city string) ([]domain.Location, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT name, address, type
		FROM activity_locations
		WHERE LOWER(city) = LOWER($1)
		ORDER BY name`,
		strings.TrimSpace(city))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.Name, &l.Address, &l.Type); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
