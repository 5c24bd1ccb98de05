package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

type fakeUnitOfWork struct {
	begins, commits, rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.begins++
	return ctx, nil
}

func (u *fakeUnitOfWork) Commit(context.Context) error {
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type planKey struct {
	user uuid.UUID
	date domain.Date
}

type fakePlanRepo struct {
	plans       map[planKey]*domain.DailyPlan
	saveErr     error
	itemUpdates []uuid.UUID
	saves       int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[planKey]*domain.DailyPlan)}
}

func (r *fakePlanRepo) Save(_ context.Context, plan *domain.DailyPlan) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.plans[planKey{plan.UserID(), plan.Date()}] = plan
	return nil
}

func (r *fakePlanRepo) FindByDate(_ context.Context, userID uuid.UUID, date domain.Date) (*domain.DailyPlan, error) {
	plan, ok := r.plans[planKey{userID, date}]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (r *fakePlanRepo) ListRange(context.Context, uuid.UUID, domain.Date, domain.Date) ([]*domain.DailyPlan, error) {
	return nil, errors.New("not used")
}

func (r *fakePlanRepo) UpdateItemCompleted(_ context.Context, _ *domain.DailyPlan, itemID uuid.UUID) error {
	r.itemUpdates = append(r.itemUpdates, itemID)
	return nil
}

type fakeProfiles struct {
	profile  *domain.Profile
	autoPlan []domain.Profile
	listErr  error
}

func (f *fakeProfiles) FindByUserID(context.Context, uuid.UUID) (*domain.Profile, error) {
	return f.profile, nil
}

func (f *fakeProfiles) Save(context.Context, domain.Profile) error { return nil }

func (f *fakeProfiles) ListAutoPlan(context.Context) ([]domain.Profile, error) {
	return f.autoPlan, f.listErr
}

type fakeTasks struct {
	tasks []domain.SchedulableTask
	err   error
}

func (f *fakeTasks) ListSchedulable(context.Context, uuid.UUID, domain.Date) ([]domain.SchedulableTask, error) {
	return f.tasks, f.err
}

func (f *fakeTasks) SetStatus(context.Context, uuid.UUID, uuid.UUID, domain.TaskStatus) error {
	return nil
}

type fakeBlocked struct {
	intervals []domain.BlockedInterval
}

func (f *fakeBlocked) ListBlocked(context.Context, uuid.UUID) ([]domain.BlockedInterval, error) {
	return f.intervals, nil
}

type fakeActivities struct {
	activities []domain.CustomActivity
	requested  []uuid.UUID
}

func (f *fakeActivities) ListActivities(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]domain.CustomActivity, error) {
	f.requested = ids
	return f.activities, nil
}

type fakeLocker struct {
	mu         sync.Mutex
	held       bool
	acquireErr error
	released   []string
}

func (l *fakeLocker) Acquire(context.Context, uuid.UUID, domain.Date, time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acquireErr != nil {
		return "", false, l.acquireErr
	}
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token-1", true, nil
}

func (l *fakeLocker) Release(_ context.Context, _ uuid.UUID, _ domain.Date, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released = append(l.released, token)
	return nil
}

type fakeSuggester struct {
	suggestion *domain.Suggestion
}

func (f *fakeSuggester) Suggest(context.Context, domain.SuggestionRequest) (*domain.Suggestion, error) {
	return f.suggestion, nil
}
