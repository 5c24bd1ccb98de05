package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWithUnitOfWork(t *testing.T) {
	errFn := errors.New("fn failed")
	errBegin := errors.New("begin failed")
	errCommit := errors.New("commit failed")
	errRollback := errors.New("rollback failed")

	tests := []struct {
		name        string
		beginErr    error
		fnErr       error
		commitErr   error
		rollbackErr error
		wantErrs    []error
		wantFnRun   bool
	}{
		{name: "commits on success", wantFnRun: true},
		{name: "rolls back on fn error", fnErr: errFn, wantErrs: []error{errFn}, wantFnRun: true},
		{name: "skips fn when begin fails", beginErr: errBegin, wantErrs: []error{errBegin}},
		{name: "returns commit error", commitErr: errCommit, wantErrs: []error{errCommit}, wantFnRun: true},
		{name: "joins rollback error", fnErr: errFn, rollbackErr: errRollback, wantErrs: []error{errFn, errRollback}, wantFnRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			txCtx := context.WithValue(ctx, txKey{}, "tx")
			uow := new(mockUnitOfWork)
			uow.On("Begin", ctx).Return(txCtx, tt.beginErr)
			if tt.beginErr == nil {
				if tt.fnErr != nil {
					uow.On("Rollback", txCtx).Return(tt.rollbackErr)
				} else {
					uow.On("Commit", txCtx).Return(tt.commitErr)
				}
			}

			ran := false
			err := WithUnitOfWork(ctx, uow, func(inner context.Context) error {
				ran = true
				assert.Equal(t, txCtx, inner)
				return tt.fnErr
			})

			assert.Equal(t, tt.wantFnRun, ran)
			if len(tt.wantErrs) == 0 {
				require.NoError(t, err)
			}
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			uow.AssertExpectations(t)
		})
	}
}
