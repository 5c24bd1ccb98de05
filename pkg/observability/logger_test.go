package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("plan generated", "items", 4)

		assert.Contains(t, buf.String(), "plan generated")
		assert.Contains(t, buf.String(), "items=4")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "planner-test",
			ServiceVersion: "1.2.3",
		})

		logger.Info("plan generated")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "plan generated", entry["msg"])
		assert.Equal(t, "planner-test", entry["service"])
		assert.Equal(t, "1.2.3", entry["version"])
	})

	t.Run("level filter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Format: LogFormatText, Output: &buf})

		logger.Info("dropped")
		logger.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestAttributeHandler_ContextScope(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

	ctx := WithCorrelationID(context.Background(), "corr-123")
	ctx = WithRequestID(ctx, "req-456")
	ctx = WithUserID(ctx, "user-789")
	ctx = WithOperation(ctx, "plans.regenerate")
	ctx = WithPlanDate(ctx, "2025-03-14")
	logger.InfoContext(ctx, "scoped")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "corr-123", entry[CorrelationIDKey])
	assert.Equal(t, "req-456", entry[RequestIDKey])
	assert.Equal(t, "user-789", entry[UserIDKey])
	assert.Equal(t, "plans.regenerate", entry[OperationKey])
	assert.Equal(t, "2025-03-14", entry[PlanDateKey])
}

func TestAttributeHandler_OmitsEmptyScope(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

	logger.InfoContext(context.Background(), "unscoped")

	entry := decodeEntry(t, &buf)
	assert.NotContains(t, entry, CorrelationIDKey)
	assert.NotContains(t, entry, UserIDKey)
	assert.NotContains(t, entry, PlanDateKey)
}

func TestAttributeHandler_Delegation(t *testing.T) {
	base := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := &attributeHandler{handler: base}

	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
	assert.IsType(t, &attributeHandler{}, handler.WithAttrs([]slog.Attr{slog.String("k", "v")}))
	assert.IsType(t, &attributeHandler{}, handler.WithGroup("g"))
}

func TestLogConfigFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		level  LogLevel
		format LogFormat
		source bool
	}{
		{name: "defaults", env: nil, level: LogLevelInfo, format: LogFormatText},
		{name: "production", env: map[string]string{"APP_ENV": "production"}, level: LogLevelInfo, format: LogFormatJSON, source: true},
		{
			name:   "overrides",
			env:    map[string]string{"APP_ENV": "production", "LOG_LEVEL": "debug", "LOG_FORMAT": "text"},
			level:  LogLevelDebug,
			format: LogFormatText,
			source: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LogConfigFromEnv(func(key string) string { return tt.env[key] })

			assert.Equal(t, tt.level, cfg.Level)
			assert.Equal(t, tt.format, cfg.Format)
			assert.Equal(t, tt.source, cfg.AddSource)
			assert.Equal(t, "memoryplanner", cfg.ServiceName)
		})
	}
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSlogLevel(tt.input))
		})
	}
}
