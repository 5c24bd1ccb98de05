package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, discardLogger())

	_, err := s.Schedule(context.Background(), "nightly", "not a schedule", func(context.Context) error { return nil })
	assert.ErrorContains(t, err, `invalid schedule "not a schedule" for nightly`)
}

func TestScheduler_AcceptsSecondsField(t *testing.T) {
	s := NewScheduler(time.UTC, discardLogger())

	_, err := s.Schedule(context.Background(), "nightly", "0 0 22 * * *", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestScheduler_RunsJobs(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	s := NewScheduler(time.UTC, discardLogger()).WithMetrics(metrics)

	var runs atomic.Int32
	var sawCorrelation atomic.Bool
	_, err := s.Schedule(context.Background(), "tick", "@every 1s", func(ctx context.Context) error {
		if observability.CorrelationIDFromContext(ctx) != "" {
			sawCorrelation.Store(true)
		}
		runs.Add(1)
		return errors.New("boom")
	})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	s.Stop()

	assert.True(t, sawCorrelation.Load())
	assert.Positive(t, metrics.GetCounter(observability.MetricOperationErrors, observability.T(observability.OperationKey, "tick")))
}
