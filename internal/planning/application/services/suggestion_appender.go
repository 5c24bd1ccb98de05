package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

// DefaultSuggestionTimeout bounds one suggester call.
const DefaultSuggestionTimeout = 20 * time.Second

// SuggestionAppender asks for one relaxing activity at the end of a full
// enough plan. A failing suggester never fails the plan.
type SuggestionAppender struct {
	suggester domain.Suggester
	locations domain.LocationSource
	logger    *slog.Logger
	metrics   observability.Metrics
	timeout   time.Duration
}

// NewSuggestionAppender returns an appender. A nil suggester disables
// suggestions; a nil location source sends none.
func NewSuggestionAppender(suggester domain.Suggester, locations domain.LocationSource, logger *slog.Logger) *SuggestionAppender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionAppender{
		suggester: suggester,
		locations: locations,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		timeout:   DefaultSuggestionTimeout,
	}
}

func (a *SuggestionAppender) WithMetrics(m observability.Metrics) *SuggestionAppender {
	if m != nil {
		a.metrics = m
	}
	return a
}

func (a *SuggestionAppender) WithTimeout(d time.Duration) *SuggestionAppender {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Append returns result with the suggestion placed at its cursor, or result
// unchanged.
func (a *SuggestionAppender) Append(ctx context.Context, engine *domain.Engine, profile domain.Profile, result domain.Result) domain.Result {
	if a == nil || a.suggester == nil || len(result.Items) < domain.MinItemsForSuggestion {
		return result
	}

	req := domain.SuggestionRequest{
		UserID:       profile.UserID,
		Date:         result.Day.Date,
		TimeOfDay:    domain.TimeOfDayAt(result.State.Cursor),
		Cursor:       result.State.Cursor,
		PlanTitles:   planTitles(result.Items),
		City:         profile.City,
		ContextNotes: profile.ContextNotes,
	}
	if profile.City != "" && a.locations != nil {
		locations, err := a.locations.ListLocations(ctx, profile.City)
		if err != nil {
			a.logger.WarnContext(ctx, "failed to load locations", "city", profile.City, "error", err)
		}
		req.Locations = locations
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	suggestion, err := a.suggester.Suggest(callCtx, req)
	if err != nil {
		a.metrics.Counter(observability.MetricSuggestionFailures, 1)
		a.logger.WarnContext(ctx, "activity suggestion failed", "error", err)
		return result
	}
	if suggestion == nil {
		return result
	}

	item, state, ok := engine.PlaceSuggestion(result.Day, result.State, *suggestion)
	if !ok {
		a.logger.DebugContext(ctx, "suggestion does not fit the window", "title", suggestion.Title)
		return result
	}
	result.Items = append(result.Items, item)
	result.State = state
	return result
}

func planTitles(items []domain.ScheduleItem) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		if !item.IsBreak() {
			titles = append(titles, item.Title)
		}
	}
	return titles
}
