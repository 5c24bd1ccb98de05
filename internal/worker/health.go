package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
)

// StatsSource reports outbox processor progress.
type StatsSource interface {
	GetStats() outbox.Stats
}

// OutboxChecker degrades health when the processor is stopped or lags
// behind by more than maxLag.
func OutboxChecker(stats StatsSource, maxLag time.Duration) observability.HealthChecker {
	return func(ctx context.Context) observability.HealthCheckResult {
		s := stats.GetStats()
		result := observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Timestamp: time.Now()}
		switch {
		case !s.IsRunning:
			result.Status = observability.HealthStatusDegraded
			result.Message = "outbox processor not running"
		case maxLag > 0 && s.LagSeconds > maxLag.Seconds():
			result.Status = observability.HealthStatusDegraded
			result.Message = fmt.Sprintf("outbox lag %.0fs", s.LagSeconds)
		default:
			result.Message = fmt.Sprintf("published %d, failed %d, dead %d", s.PublishedCount, s.FailedCount, s.DeadCount)
		}
		return result
	}
}
