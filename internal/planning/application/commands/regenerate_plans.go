package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

// AutoPlanSource lists the profiles that ask for a nightly plan.
type AutoPlanSource interface {
	ListAutoPlan(ctx context.Context) ([]domain.Profile, error)
}

// RegeneratePlansResult counts the outcome per user.
type RegeneratePlansResult struct {
	Date      domain.Date
	Generated int
	Skipped   int
	Failed    int
}

// RegeneratePlansHandler generates tomorrow's plan for every auto-plan
// user. One failing user does not stop the others.
type RegeneratePlansHandler struct {
	profiles AutoPlanSource
	generate *GeneratePlanHandler
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegeneratePlansHandler creates a new RegeneratePlansHandler.
func NewRegeneratePlansHandler(profiles AutoPlanSource, generate *GeneratePlanHandler, logger *slog.Logger) *RegeneratePlansHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegeneratePlansHandler{
		profiles: profiles,
		generate: generate,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the clock that decides which day is tomorrow.
func (h *RegeneratePlansHandler) WithClock(now func() time.Time) *RegeneratePlansHandler {
	if now != nil {
		h.now = now
	}
	return h
}

// Handle returns an error only when the profiles cannot be listed or ctx
// is cancelled mid-run.
func (h *RegeneratePlansHandler) Handle(ctx context.Context) (*RegeneratePlansResult, error) {
	profiles, err := h.profiles.ListAutoPlan(ctx)
	if err != nil {
		return nil, err
	}

	result := &RegeneratePlansResult{Date: domain.DateOf(h.now()).AddDays(1)}
	ctx = observability.WithPlanDate(ctx, result.Date.String())
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := h.generate.Handle(ctx, GeneratePlanCommand{UserID: p.UserID, Date: result.Date})
		switch {
		case err == nil:
			result.Generated++
		case errors.Is(err, domain.ErrGenerationInProgress):
			result.Skipped++
		default:
			result.Failed++
			h.logger.ErrorContext(ctx, "nightly plan failed", "user_id", p.UserID, "error", err)
		}
	}

	h.logger.InfoContext(ctx, "nightly plans generated",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}
