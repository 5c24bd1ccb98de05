package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

var ErrSubstepNotFound = errors.New("sub-step not found")

// TaskSourceRepository reads open sub-steps of a user's active projects.
type TaskSourceRepository struct {
	conn database.Connection
}

func NewTaskSourceRepository(conn database.Connection) *TaskSourceRepository {
	return &TaskSourceRepository{conn: conn}
}

// ListSchedulable skips sub-steps scheduled after date. Project priority is
// derived from the deadline as seen on date.
func (r *TaskSourceRepository) ListSchedulable(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.SchedulableTask, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT s.id, s.title, s.description, s.duration_text, s.status, s.tracking_enabled,
		       s.scheduled_date, s.order_index, p.id, p.title, p.category, p.deadline
		FROM substeps s
		JOIN steps st ON st.id = s.step_id
		JOIN projects p ON p.id = st.project_id
		WHERE p.user_id = $1
		  AND p.status = 'active'
		  AND s.status IN ('pending', 'in_progress')
		  AND (s.scheduled_date IS NULL OR s.scheduled_date <= $2)
		ORDER BY p.created_at, st.order_index, s.order_index`,
		userID.String(), date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.SchedulableTask
	for rows.Next() {
		var (
			t                   domain.SchedulableTask
			id, status          string
			projectID           string
			scheduled, deadline sql.NullString
		)
		if err := rows.Scan(&id, &t.Title, &t.Description, &t.DurationText, &status, &t.TrackingEnabled,
			&scheduled, &t.OrderIndex, &projectID, &t.ProjectTitle, &t.ProjectCategory, &deadline); err != nil {
			return nil, err
		}
		t.ID = parseUUID(id)
		t.ProjectID = parseUUID(projectID)
		t.Status = domain.TaskStatus(status)
		if t.ScheduledDate, err = parseNullDate(scheduled); err != nil {
			return nil, fmt.Errorf("sub-step %s scheduled_date: %w", id, err)
		}
		due, err := parseNullDate(deadline)
		if err != nil {
			return nil, fmt.Errorf("project %s deadline: %w", projectID, err)
		}
		t.ProjectPriority = domain.ProjectPriority(due, date)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetStatus updates a sub-step owned by userID.
func (r *TaskSourceRepository) SetStatus(ctx context.Context, userID, taskID uuid.UUID, status domain.TaskStatus) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE substeps SET status = $1, updated_at = $2
		WHERE id = $3
		  AND step_id IN (
			SELECT st.id FROM steps st JOIN projects p ON p.id = st.project_id WHERE p.user_id = $4
		  )`,
		string(status), formatTime(time.Now()), taskID.String(), userID.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSubstepNotFound
	}
	return nil
}
