package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	planDate = domain.Date{Year: 2025, Month: time.March, Day: 14}
	dayAhead = time.Date(2025, time.March, 13, 20, 0, 0, 0, time.UTC)
)

type generateFixture struct {
	plans      *fakePlanRepo
	profiles   *fakeProfiles
	tasks      *fakeTasks
	blocked    *fakeBlocked
	activities *fakeActivities
	outbox     *outbox.InMemoryRepository
	uow        *fakeUnitOfWork
	metrics    *observability.InMemoryMetrics
	handler    *GeneratePlanHandler
}

func eveningProfile(userID uuid.UUID) *domain.Profile {
	p := domain.DefaultProfile(userID)
	p.WakeUp = domain.At(9, 0)
	p.MorningRoutine = 0
	return &p
}

func substep(title, duration string, priority int) domain.SchedulableTask {
	return domain.SchedulableTask{
		ID:              uuid.New(),
		Title:           title,
		DurationText:    duration,
		Status:          domain.TaskStatusPending,
		ProjectPriority: priority,
	}
}

func newGenerateFixture(userID uuid.UUID) *generateFixture {
	f := &generateFixture{
		plans:    newFakePlanRepo(),
		profiles: &fakeProfiles{profile: eveningProfile(userID)},
		tasks: &fakeTasks{tasks: []domain.SchedulableTask{
			substep("write chapter", "60min", 90),
			substep("review notes", "45min", 70),
			substep("stretch", "30min", 50),
		}},
		blocked:    &fakeBlocked{},
		activities: &fakeActivities{},
		outbox:     outbox.NewInMemoryRepository(),
		uow:        &fakeUnitOfWork{},
		metrics:    observability.NewInMemoryMetrics(),
	}
	f.handler = NewGeneratePlanHandler(f.plans, f.profiles, f.tasks, f.blocked, f.activities, f.outbox, f.uow, nil).
		WithMetrics(f.metrics).
		WithClock(func() time.Time { return dayAhead })
	return f
}

func TestGeneratePlanHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("stores the plan and its event", func(t *testing.T) {
		f := newGenerateFixture(userID)

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		plan := result.Plan
		assert.Len(t, plan.Items(), 5)
		assert.Equal(t, 202, plan.AvailableMinutes())
		assert.Equal(t, 135, result.PlacedMinutes)
		assert.Empty(t, result.Rejections)
		assert.Empty(t, plan.DomainEvents())
		assert.Equal(t, 1, f.plans.saves)
		assert.Equal(t, 1, f.uow.commits)

		msgs := f.outbox.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.RoutingKeyPlanGenerated, msgs[0].RoutingKey)
		assert.Equal(t, plan.ID(), msgs[0].AggregateID)
		assert.Contains(t, string(msgs[0].Metadata), userID.String())

		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricPlansGenerated,
			observability.T("style", "mixed"), observability.T("intensity", "moderate")))
		assert.Equal(t, int64(2), f.metrics.GetCounter(observability.MetricItemsPlaced, observability.T("item_type", "break")))
	})

	t.Run("regeneration replaces the snapshot", func(t *testing.T) {
		f := newGenerateFixture(userID)
		first, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		f.tasks.tasks = f.tasks.tasks[:1]
		second, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		assert.Equal(t, first.Plan.ID(), second.Plan.ID())
		assert.Equal(t, 2, second.Plan.Version())
		assert.Len(t, second.Plan.Items(), 2)
		assert.Len(t, f.outbox.Messages(), 2)
	})

	t.Run("applies overrides", func(t *testing.T) {
		f := newGenerateFixture(userID)

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{
			UserID:    userID,
			Date:      planDate,
			Style:     "thematic_blocks",
			Intensity: "light",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StyleThematicBlocks, result.Plan.Style())
		assert.Equal(t, domain.IntensityLight, result.Plan.Intensity())
		assert.Equal(t, 162, result.Plan.AvailableMinutes())
	})

	t.Run("uses the default profile", func(t *testing.T) {
		f := newGenerateFixture(userID)
		f.profiles.profile = nil

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		assert.Equal(t, domain.At(7, 30), result.Plan.Items()[0].ScheduledTime)
	})

	t.Run("fetches activities only when chosen", func(t *testing.T) {
		f := newGenerateFixture(userID)
		yoga := domain.CustomActivity{ID: uuid.New(), Title: "yoga", DurationText: "30min"}
		f.activities.activities = []domain.CustomActivity{yoga}

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)
		assert.Nil(t, f.activities.requested)

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate, ActivityIDs: []uuid.UUID{yoga.ID}})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{yoga.ID}, f.activities.requested)
		items := result.Plan.Items()
		assert.Equal(t, domain.ItemTypeCustomActivity, items[len(items)-1].Type)
	})

	t.Run("appends a suggestion", func(t *testing.T) {
		f := newGenerateFixture(userID)
		suggester := &fakeSuggester{suggestion: &domain.Suggestion{Title: "Evening walk", DurationText: "30min"}}
		f.handler.WithSuggestions(services.NewSuggestionAppender(suggester, nil, nil))

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		items := result.Plan.Items()
		require.Len(t, items, 6)
		assert.Equal(t, domain.ItemTypeSuggestedActivity, items[5].Type)
		assert.Equal(t, domain.At(20, 50), items[5].ScheduledTime)
	})

	t.Run("records rejections", func(t *testing.T) {
		f := newGenerateFixture(userID)
		f.tasks.tasks = append(f.tasks.tasks, substep("marathon", "5h", 40))

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		require.Len(t, result.Rejections, 1)
		assert.Equal(t, domain.RejectBudgetExceeded, result.Rejections[0].Reason)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricPlacementRejections, observability.T("reason", "budget_exceeded")))
	})

	t.Run("fails when inputs cannot be loaded", func(t *testing.T) {
		f := newGenerateFixture(userID)
		f.tasks.err = errors.New("database error")

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
		assert.Zero(t, f.uow.begins)
	})

	t.Run("rolls back when the save fails", func(t *testing.T) {
		f := newGenerateFixture(userID)
		f.plans.saveErr = errors.New("disk full")

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})

		require.Error(t, err)
		assert.Equal(t, 1, f.uow.rollbacks)
		assert.Empty(t, f.outbox.Messages())
	})

	t.Run("defaults to today", func(t *testing.T) {
		f := newGenerateFixture(userID)

		result, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID})
		require.NoError(t, err)

		assert.Equal(t, domain.DateOf(dayAhead), result.Plan.Date())
	})
}

func TestGeneratePlanHandler_Lock(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("releases the lock", func(t *testing.T) {
		f := newGenerateFixture(userID)
		locker := &fakeLocker{}
		f.handler.WithLocker(locker, time.Minute)

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})
		require.NoError(t, err)

		assert.Equal(t, []string{"token-1"}, locker.released)
		assert.False(t, locker.held)
	})

	t.Run("refuses concurrent generation", func(t *testing.T) {
		f := newGenerateFixture(userID)
		f.handler.WithLocker(&fakeLocker{held: true}, time.Minute)

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})

		assert.ErrorIs(t, err, domain.ErrGenerationInProgress)
		assert.Zero(t, f.plans.saves)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricGenerationSkipped))
	})

	t.Run("proceeds when the lock store is down", func(t *testing.T) {
		f := newGenerateFixture(userID)
		locker := &fakeLocker{acquireErr: errors.New("connection refused")}
		f.handler.WithLocker(locker, time.Minute)

		_, err := f.handler.Handle(ctx, GeneratePlanCommand{UserID: userID, Date: planDate})

		require.NoError(t, err)
		assert.Empty(t, locker.released)
	})
}
