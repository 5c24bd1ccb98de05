package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okPing(context.Context) error   { return nil }
func downPing(context.Context) error { return errors.New("connection refused") }

func TestHealthRegistry_Check(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]HealthChecker
		want     HealthStatus
	}{
		{name: "no checks", checkers: nil, want: HealthStatusHealthy},
		{
			name: "all healthy",
			checkers: map[string]HealthChecker{
				"database": PingChecker("database", HealthStatusUnhealthy, okPing),
				"redis":    PingChecker("redis", HealthStatusDegraded, okPing),
			},
			want: HealthStatusHealthy,
		},
		{
			name: "cache down degrades",
			checkers: map[string]HealthChecker{
				"database": PingChecker("database", HealthStatusUnhealthy, okPing),
				"redis":    PingChecker("redis", HealthStatusDegraded, downPing),
			},
			want: HealthStatusDegraded,
		},
		{
			name: "database down wins",
			checkers: map[string]HealthChecker{
				"database": PingChecker("database", HealthStatusUnhealthy, downPing),
				"redis":    PingChecker("redis", HealthStatusDegraded, downPing),
			},
			want: HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for name, checker := range tt.checkers {
				registry.Register(name, checker)
			}

			health := registry.Check(context.Background())

			assert.Equal(t, tt.want, health.Status)
			assert.Len(t, health.Checks, len(tt.checkers))
		})
	}
}

func TestPingChecker_Message(t *testing.T) {
	result := PingChecker("rabbitmq", HealthStatusDegraded, downPing)(context.Background())

	assert.Equal(t, HealthStatusDegraded, result.Status)
	assert.Equal(t, "rabbitmq: connection refused", result.Message)
}
