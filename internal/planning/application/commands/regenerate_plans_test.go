package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autoPlanUsers(n int) []domain.Profile {
	out := make([]domain.Profile, n)
	for i := range out {
		out[i] = domain.DefaultProfile(uuid.New())
		out[i].AutoPlan = true
	}
	return out
}

func TestRegeneratePlansHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("generates tomorrow for every user", func(t *testing.T) {
		f := newGenerateFixture(uuid.New())
		users := autoPlanUsers(2)
		f.profiles.autoPlan = users
		h := NewRegeneratePlansHandler(f.profiles, f.handler, nil).
			WithClock(func() time.Time { return dayAhead })

		result, err := h.Handle(ctx)
		require.NoError(t, err)

		assert.Equal(t, planDate, result.Date)
		assert.Equal(t, 2, result.Generated)
		assert.Zero(t, result.Failed)
		for _, u := range users {
			_, err := f.plans.FindByDate(ctx, u.UserID, planDate)
			assert.NoError(t, err)
		}
	})

	t.Run("counts held locks as skipped", func(t *testing.T) {
		f := newGenerateFixture(uuid.New())
		f.profiles.autoPlan = autoPlanUsers(1)
		f.handler.WithLocker(&fakeLocker{held: true}, time.Minute)
		h := NewRegeneratePlansHandler(f.profiles, f.handler, nil).
			WithClock(func() time.Time { return dayAhead })

		result, err := h.Handle(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Skipped)
		assert.Zero(t, result.Generated)
	})

	t.Run("keeps going after a failure", func(t *testing.T) {
		f := newGenerateFixture(uuid.New())
		f.profiles.autoPlan = autoPlanUsers(3)
		f.tasks.err = errors.New("connection reset")
		h := NewRegeneratePlansHandler(f.profiles, f.handler, nil).
			WithClock(func() time.Time { return dayAhead })

		result, err := h.Handle(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Failed)
		assert.Zero(t, f.plans.saves)
	})

	t.Run("fails when profiles cannot be listed", func(t *testing.T) {
		f := newGenerateFixture(uuid.New())
		f.profiles.listErr = errors.New("db down")
		h := NewRegeneratePlansHandler(f.profiles, f.handler, nil)

		_, err := h.Handle(ctx)
		assert.EqualError(t, err, "db down")
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		f := newGenerateFixture(uuid.New())
		f.profiles.autoPlan = autoPlanUsers(2)
		h := NewRegeneratePlansHandler(f.profiles, f.handler, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		result, err := h.Handle(cancelled)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, result.Generated)
	})
}
