package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	sharedDomain "github.com/felixgeelhaar/memoryplanner/internal/shared/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// PlanRepository implements domain.PlanRepository.
type PlanRepository struct {
	conn database.Connection
}

func NewPlanRepository(conn database.Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

// inTx runs fn in the unit of work of ctx, or in its own transaction.
func inTx(ctx context.Context, conn database.Connection, fn func(ctx context.Context) error) error {
	if database.InTransaction(ctx) {
		return fn(ctx)
	}
	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}
	return uow.Commit(txCtx)
}

// Save replaces the stored plan of (user, date), whichever ID it had.
func (r *PlanRepository) Save(ctx context.Context, plan *domain.DailyPlan) error {
	return inTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		userID, date := plan.UserID().String(), plan.Date().String()

		if _, err := exec.Exec(ctx, `
			DELETE FROM daily_plan_items
			WHERE plan_id IN (SELECT id FROM daily_plans WHERE user_id = $1 AND plan_date = $2)`,
			userID, date,
		); err != nil {
			return fmt.Errorf("failed to clear plan items: %w", err)
		}

		if _, err := exec.Exec(ctx, `
			INSERT INTO daily_plans (id, user_id, plan_date, available_minutes, intensity, style, version, generated_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id, plan_date) DO UPDATE SET
				id = excluded.id,
				available_minutes = excluded.available_minutes,
				intensity = excluded.intensity,
				style = excluded.style,
				version = excluded.version,
				generated_at = excluded.generated_at,
				updated_at = excluded.updated_at`,
			plan.ID().String(), userID, date, plan.AvailableMinutes(), string(plan.Intensity()), string(plan.Style()),
			plan.Version(), formatTime(plan.GeneratedAt()), formatTime(plan.CreatedAt()), formatTime(plan.UpdatedAt()),
		); err != nil {
			return fmt.Errorf("failed to upsert plan: %w", err)
		}

		for i, item := range plan.Items() {
			if err := insertItem(ctx, exec, plan.ID(), i, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertItem(ctx context.Context, exec database.Executor, planID uuid.UUID, position int, item domain.ScheduleItem) error {
	var locName, locAddress, locType sql.NullString
	if item.Location != nil {
		locName = sql.NullString{String: item.Location.Name, Valid: true}
		locAddress = nullString(item.Location.Address)
		locType = nullString(item.Location.Type)
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO daily_plan_items (
			plan_id, id, position, source_id, item_type, title, description, start_time, duration_minutes,
			duration_text, priority, project_id, project_title, project_category,
			location_name, location_address, location_type, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		planID.String(), item.ID.String(), position, nullUUID(item.SourceID), string(item.Type), item.Title,
		item.Description, formatClock(item.ScheduledTime), item.DurationMinutes, item.DurationText, item.Priority,
		nullUUID(item.ProjectID), item.ProjectTitle, item.ProjectCategory, locName, locAddress, locType, item.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan item %s: %w", item.ID, err)
	}
	return nil
}

const selectPlan = `
	SELECT id, user_id, plan_date, available_minutes, intensity, style, version, generated_at, created_at, updated_at
	FROM daily_plans`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlanRow(row rowScanner) (*domain.DailyPlan, error) {
	var (
		id, userID, planDate              string
		availableMinutes, version         int
		intensity, style                  string
		generatedAt, createdAt, updatedAt string
	)
	if err := row.Scan(&id, &userID, &planDate, &availableMinutes, &intensity, &style, &version,
		&generatedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(planDate)
	if err != nil {
		return nil, err
	}
	base := sharedDomain.RehydrateBaseAggregateRoot(parseUUID(id), parseTime(createdAt), parseTime(updatedAt), version)
	return domain.RehydrateDailyPlan(base, parseUUID(userID), date, nil, availableMinutes,
		domain.ParseIntensity(intensity), domain.ParseStyle(style), parseTime(generatedAt)), nil
}

func (r *PlanRepository) FindByDate(ctx context.Context, userID uuid.UUID, date domain.Date) (*domain.DailyPlan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	plan, err := scanPlanRow(exec.QueryRow(ctx, selectPlan+` WHERE user_id = $1 AND plan_date = $2`,
		userID.String(), date.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return r.withItems(ctx, plan)
}

func (r *PlanRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.DailyPlan, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		selectPlan+` WHERE user_id = $1 AND plan_date >= $2 AND plan_date <= $3 ORDER BY plan_date`,
		userID.String(), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	var plans []*domain.DailyPlan
	for rows.Next() {
		plan, err := scanPlanRow(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i, plan := range plans {
		if plans[i], err = r.withItems(ctx, plan); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// withItems loads the items of plan in position order.
func (r *PlanRepository) withItems(ctx context.Context, plan *domain.DailyPlan) (*domain.DailyPlan, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, source_id, item_type, title, description, start_time, duration_minutes, duration_text,
		       priority, project_id, project_title, project_category,
		       location_name, location_address, location_type, completed
		FROM daily_plan_items
		WHERE plan_id = $1
		ORDER BY position`,
		plan.ID().String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ScheduleItem
	for rows.Next() {
		var (
			item                         domain.ScheduleItem
			id, itemType, startTime      string
			sourceID, projectID          sql.NullString
			locName, locAddress, locType sql.NullString
		)
		if err := rows.Scan(&id, &sourceID, &itemType, &item.Title, &item.Description, &startTime,
			&item.DurationMinutes, &item.DurationText, &item.Priority, &projectID, &item.ProjectTitle,
			&item.ProjectCategory, &locName, &locAddress, &locType, &item.Completed); err != nil {
			return nil, err
		}
		item.ID = parseUUID(id)
		item.SourceID = parseNullUUID(sourceID)
		item.ProjectID = parseNullUUID(projectID)
		item.Type = domain.ItemType(itemType)
		if item.ScheduledTime, err = domain.ParseClock(startTime); err != nil {
			return nil, fmt.Errorf("plan item %s: %w", id, err)
		}
		if locName.Valid {
			item.Location = &domain.Location{Name: locName.String, Address: locAddress.String, Type: locType.String}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RehydrateDailyPlan(
		sharedDomain.RehydrateBaseAggregateRoot(plan.ID(), plan.CreatedAt(), plan.UpdatedAt(), plan.Version()),
		plan.UserID(), plan.Date(), items, plan.AvailableMinutes(), plan.Intensity(), plan.Style(), plan.GeneratedAt(),
	), nil
}

// UpdateItemCompleted writes the flag of one item and the plan version.
func (r *PlanRepository) UpdateItemCompleted(ctx context.Context, plan *domain.DailyPlan, itemID uuid.UUID) error {
	var completed, found bool
	for _, item := range plan.Items() {
		if item.ID == itemID {
			completed, found = item.Completed, true
			break
		}
	}
	if !found {
		return domain.ErrItemNotFound
	}

	return inTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		res, err := exec.Exec(ctx, `UPDATE daily_plan_items SET completed = $1 WHERE plan_id = $2 AND id = $3`,
			completed, plan.ID().String(), itemID.String())
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrItemNotFound
		}
		_, err = exec.Exec(ctx, `UPDATE daily_plans SET version = $1, updated_at = $2 WHERE id = $3`,
			plan.Version(), formatTime(time.Now()), plan.ID().String())
		return err
	})
}
