package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/memoryplanner/internal/shared/application"
	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultLockTTL bounds how long one generation may hold the lock.
const DefaultLockTTL = 30 * time.Second

// GeneratePlanCommand asks for the plan of one user and date. Style and
// Intensity override the profile when set.
type GeneratePlanCommand struct {
	UserID      uuid.UUID
	Date        domain.Date
	Style       string
	Intensity   string
	ActivityIDs []uuid.UUID
}

// GeneratePlanResult is the stored plan and what the engine left out.
type GeneratePlanResult struct {
	Plan          *domain.DailyPlan
	Rejections    []domain.Rejection
	PlacedMinutes int
}

// GeneratePlanHandler builds and stores a daily plan.
type GeneratePlanHandler struct {
	plans      domain.PlanRepository
	profiles   domain.ProfileRepository
	tasks      domain.TaskSource
	blocked    domain.BlockedSlotSource
	activities domain.ActivitySource
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger

	appender *services.SuggestionAppender
	locker   domain.GenerationLocker
	lockTTL  time.Duration
	policy   domain.RejectionPolicy
	metrics  observability.Metrics
	now      func() time.Time
}

// NewGeneratePlanHandler creates a new GeneratePlanHandler.
func NewGeneratePlanHandler(
	plans domain.PlanRepository,
	profiles domain.ProfileRepository,
	tasks domain.TaskSource,
	blocked domain.BlockedSlotSource,
	activities domain.ActivitySource,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *GeneratePlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratePlanHandler{
		plans:      plans,
		profiles:   profiles,
		tasks:      tasks,
		blocked:    blocked,
		activities: activities,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		lockTTL:    DefaultLockTTL,
		policy:     domain.StopOnReject,
		metrics:    observability.NoopMetrics{},
		now:        time.Now,
	}
}

// WithSuggestions appends an activity suggestion to full plans.
func (h *GeneratePlanHandler) WithSuggestions(appender *services.SuggestionAppender) *GeneratePlanHandler {
	h.appender = appender
	return h
}

// WithLocker serializes generation per user and date.
func (h *GeneratePlanHandler) WithLocker(locker domain.GenerationLocker, ttl time.Duration) *GeneratePlanHandler {
	h.locker = locker
	if ttl > 0 {
		h.lockTTL = ttl
	}
	return h
}

func (h *GeneratePlanHandler) WithRejectionPolicy(policy domain.RejectionPolicy) *GeneratePlanHandler {
	h.policy = policy
	return h
}

func (h *GeneratePlanHandler) WithMetrics(m observability.Metrics) *GeneratePlanHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// WithClock replaces time.Now.
func (h *GeneratePlanHandler) WithClock(now func() time.Time) *GeneratePlanHandler {
	if now != nil {
		h.now = now
	}
	return h
}

// Handle executes the GeneratePlanCommand.
func (h *GeneratePlanHandler) Handle(ctx context.Context, cmd GeneratePlanCommand) (*GeneratePlanResult, error) {
	started := time.Now()
	now := h.now()
	date := cmd.Date
	if date.IsZero() {
		date = domain.DateOf(now)
	}
	ctx = observability.WithPlanDate(ctx, date.String())

	token, err := h.acquire(ctx, cmd.UserID, date)
	if err != nil {
		return nil, err
	}
	if token != "" {
		defer h.release(ctx, cmd.UserID, date, token)
	}

	profile, inputs, err := h.load(ctx, cmd, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan inputs: %w", err)
	}
	if cmd.Style != "" {
		profile.Style = domain.ParseStyle(cmd.Style)
	}
	if cmd.Intensity != "" {
		profile.Intensity = domain.ParseIntensity(cmd.Intensity)
	}

	engine := domain.NewEngine(
		domain.WithRejectionPolicy(h.policy),
		domain.WithTracer(services.NewSlogTracer(ctx, h.logger)),
	)
	result := engine.Run(profile.PlanInput(date, now, inputs))
	result = h.appender.Append(ctx, engine, profile, result)

	var plan *domain.DailyPlan
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.plans.FindByDate(txCtx, cmd.UserID, date)
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			plan = domain.NewDailyPlan(cmd.UserID, date)
		case err != nil:
			return err
		default:
			plan = existing
		}
		plan.Replace(result.Items, result.Availability.AvailableMinutes, profile.Intensity, profile.Style, now)

		if err := h.plans.Save(txCtx, plan); err != nil {
			return err
		}

		events := plan.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.UserID))
		msgs, err := outbox.MessagesFor(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	plan.ClearDomainEvents()

	h.record(profile, result, time.Since(started))
	h.logger.InfoContext(ctx, "plan generated",
		"items", len(result.Items),
		"available_minutes", result.Availability.AvailableMinutes,
		"rejections", len(result.Rejections),
	)

	return &GeneratePlanResult{
		Plan:          plan,
		Rejections:    result.Rejections,
		PlacedMinutes: result.PlacedMinutes(),
	}, nil
}

// load fetches the profile and the day's records concurrently.
func (h *GeneratePlanHandler) load(ctx context.Context, cmd GeneratePlanCommand, date domain.Date) (domain.Profile, domain.Inputs, error) {
	var (
		stored *domain.Profile
		inputs domain.Inputs
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := h.profiles.FindByUserID(gctx, cmd.UserID)
		stored = p
		return err
	})
	g.Go(func() error {
		tasks, err := h.tasks.ListSchedulable(gctx, cmd.UserID, date)
		inputs.Tasks = tasks
		return err
	})
	g.Go(func() error {
		blocked, err := h.blocked.ListBlocked(gctx, cmd.UserID)
		inputs.Blocked = blocked
		return err
	})
	if len(cmd.ActivityIDs) > 0 {
		g.Go(func() error {
			activities, err := h.activities.ListActivities(gctx, cmd.UserID, cmd.ActivityIDs)
			inputs.Activities = activities
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Profile{}, domain.Inputs{}, err
	}

	if stored == nil {
		return domain.DefaultProfile(cmd.UserID), inputs, nil
	}
	return *stored, inputs, nil
}

// acquire returns an empty token when no lock is held. An unreachable
// lock store lets generation proceed.
func (h *GeneratePlanHandler) acquire(ctx context.Context, userID uuid.UUID, date domain.Date) (string, error) {
	if h.locker == nil {
		return "", nil
	}
	token, ok, err := h.locker.Acquire(ctx, userID, date, h.lockTTL)
	if err != nil {
		h.logger.WarnContext(ctx, "generation lock unavailable", "error", err)
		return "", nil
	}
	if !ok {
		h.metrics.Counter(observability.MetricGenerationSkipped, 1)
		return "", domain.ErrGenerationInProgress
	}
	return token, nil
}

func (h *GeneratePlanHandler) release(ctx context.Context, userID uuid.UUID, date domain.Date, token string) {
	if err := h.locker.Release(context.WithoutCancel(ctx), userID, date, token); err != nil {
		h.logger.WarnContext(ctx, "failed to release generation lock", "error", err)
	}
}

func (h *GeneratePlanHandler) record(profile domain.Profile, result domain.Result, elapsed time.Duration) {
	h.metrics.Counter(observability.MetricPlansGenerated, 1,
		observability.T("style", string(profile.Style)),
		observability.T("intensity", string(profile.Intensity)),
	)
	h.metrics.Timing(observability.MetricGenerationDuration, elapsed)
	for _, item := range result.Items {
		h.metrics.Counter(observability.MetricItemsPlaced, 1, observability.T("item_type", string(item.Type)))
	}
	for _, r := range result.Rejections {
		h.metrics.Counter(observability.MetricPlacementRejections, 1, observability.T("reason", string(r.Reason)))
	}
}
