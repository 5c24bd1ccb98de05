package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{
		Level:  observability.LogLevelDebug,
		Format: observability.LogFormatJSON,
		Output: &buf,
	})
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	taskID := uuid.New()

	NewSlogTracer(ctx, logger).Trace(domain.TraceEvent{
		Step:    domain.TraceRejected,
		TaskID:  taskID,
		Title:   "huge",
		Cursor:  domain.At(19, 15),
		Attempt: 1,
		Reason:  domain.RejectBudgetExceeded,
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "engine decision", record["msg"])
	assert.Equal(t, "rejected", record["step"])
	assert.Equal(t, "19:15", record["cursor"])
	assert.Equal(t, taskID.String(), record["task_id"])
	assert.Equal(t, "budget_exceeded", record["reason"])
	assert.Equal(t, "corr-1", record["correlation_id"])
}

func TestSlogTracer_InfoLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{Level: observability.LogLevelInfo, Format: observability.LogFormatJSON, Output: &buf})

	NewSlogTracer(context.Background(), logger).Trace(domain.TraceEvent{Step: domain.TracePlaced})

	assert.Zero(t, buf.Len())
}
