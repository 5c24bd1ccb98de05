package observability

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimer_StopWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelDebug, Format: LogFormatText, Output: &buf})
	metrics := NewInMemoryMetrics()

	StartTimer("generate_plan").WithLogger(logger).WithMetrics(metrics).Stop()
	StartTimer("generate_plan").WithLogger(logger).WithMetrics(metrics).StopWithError(errors.New("no profile"))

	op := T(OperationKey, "generate_plan")
	assert.Equal(t, int64(2), metrics.GetCounter(MetricOperationTotal, op))
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, op))
	assert.Len(t, metrics.GetTimings(MetricOperationDuration, op), 2)
	assert.Contains(t, buf.String(), "operation failed")
	assert.Contains(t, buf.String(), "no profile")
}

func TestTimer_TagsPrecedeOperation(t *testing.T) {
	metrics := NewInMemoryMetrics()

	StartTimer("relay").WithMetrics(metrics).WithTags(T("driver", "sqlite")).Stop()

	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, T("driver", "sqlite"), T(OperationKey, "relay")))
}
