package services

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuggester struct {
	suggestion *domain.Suggestion
	err        error
	calls      []domain.SuggestionRequest
}

func (f *fakeSuggester) Suggest(_ context.Context, req domain.SuggestionRequest) (*domain.Suggestion, error) {
	f.calls = append(f.calls, req)
	return f.suggestion, f.err
}

type fakeLocations struct {
	byCity map[string][]domain.Location
	err    error
}

func (f *fakeLocations) ListLocations(_ context.Context, city string) ([]domain.Location, error) {
	return f.byCity[city], f.err
}

func fullResult(n int) domain.Result {
	result := domain.Result{
		Day: domain.Day{
			Date:         domain.Date{Year: 2025, Month: 3, Day: 14},
			Availability: domain.Availability{AvailableMinutes: 300, WindowStart: domain.At(18, 0), WindowEnd: domain.At(22, 30)},
			Intensity:    domain.IntensityModerate,
		},
		State: domain.CursorState{Cursor: domain.At(20, 0), Consumed: 120},
	}
	for i := 0; i < n; i++ {
		result.Items = append(result.Items, domain.ScheduleItem{
			ID:    uuid.New(),
			Type:  domain.ItemTypeSubstep,
			Title: "task",
		})
	}
	return result
}

func TestSuggestionAppender_Append(t *testing.T) {
	ctx := context.Background()
	engine := domain.NewEngine()
	profile := domain.DefaultProfile(uuid.New())
	profile.City = "paris"

	t.Run("skips short plans", func(t *testing.T) {
		suggester := &fakeSuggester{suggestion: &domain.Suggestion{Title: "Walk", DurationText: "30min"}}
		appender := NewSuggestionAppender(suggester, nil, nil)

		result := appender.Append(ctx, engine, profile, fullResult(3))

		assert.Len(t, result.Items, 3)
		assert.Empty(t, suggester.calls)
	})

	t.Run("places the suggestion at the cursor", func(t *testing.T) {
		venue := domain.Location{Name: "Jardin du Luxembourg", Type: "park"}
		suggester := &fakeSuggester{suggestion: &domain.Suggestion{Title: "Walk", DurationText: "45min", Location: &venue}}
		locations := &fakeLocations{byCity: map[string][]domain.Location{"paris": {venue}}}
		appender := NewSuggestionAppender(suggester, locations, nil)

		result := appender.Append(ctx, engine, profile, fullResult(4))

		require.Len(t, result.Items, 5)
		last := result.Items[4]
		assert.Equal(t, domain.ItemTypeSuggestedActivity, last.Type)
		assert.Equal(t, domain.At(20, 0), last.ScheduledTime)
		assert.Equal(t, domain.At(20, 45), result.State.Cursor)

		require.Len(t, suggester.calls, 1)
		req := suggester.calls[0]
		assert.Equal(t, domain.Evening, req.TimeOfDay)
		assert.Equal(t, []domain.Location{venue}, req.Locations)
		assert.Len(t, req.PlanTitles, 4)
	})

	t.Run("failure leaves the plan unchanged", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		suggester := &fakeSuggester{err: errors.New("upstream timeout")}
		appender := NewSuggestionAppender(suggester, nil, nil).WithMetrics(metrics)

		result := appender.Append(ctx, engine, profile, fullResult(4))

		assert.Len(t, result.Items, 4)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSuggestionFailures))
	})

	t.Run("location lookup failure still asks", func(t *testing.T) {
		suggester := &fakeSuggester{suggestion: &domain.Suggestion{Title: "Tea", DurationText: "20min"}}
		appender := NewSuggestionAppender(suggester, &fakeLocations{err: errors.New("db down")}, nil)

		result := appender.Append(ctx, engine, profile, fullResult(4))

		assert.Len(t, result.Items, 5)
		assert.Empty(t, suggester.calls[0].Locations)
	})

	t.Run("does not fit the window", func(t *testing.T) {
		suggester := &fakeSuggester{suggestion: &domain.Suggestion{Title: "Movie", DurationText: "3h"}}
		appender := NewSuggestionAppender(suggester, nil, nil)

		result := appender.Append(ctx, engine, profile, fullResult(4))

		assert.Len(t, result.Items, 4)
	})

	t.Run("nil suggestion", func(t *testing.T) {
		appender := NewSuggestionAppender(&fakeSuggester{}, nil, nil)

		result := appender.Append(ctx, engine, profile, fullResult(4))

		assert.Len(t, result.Items, 4)
	})

	t.Run("disabled", func(t *testing.T) {
		result := NewSuggestionAppender(nil, nil, nil).Append(ctx, engine, profile, fullResult(6))

		assert.Len(t, result.Items, 6)
	})
}
