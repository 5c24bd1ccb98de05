// Package worker runs the background side of the planner: scheduled jobs
// and the health endpoints of the worker process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/memoryplanner/pkg/observability"
	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single scheduled run.
const DefaultJobTimeout = 10 * time.Minute

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps cron with the seconds field enabled. Overlapping runs of
// the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics observability.Metrics
	timeout time.Duration
}

func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		metrics: observability.NoopMetrics{},
		timeout: DefaultJobTimeout,
	}
}

// WithMetrics records every run as an operation named after the job.
func (s *Scheduler) WithMetrics(m observability.Metrics) *Scheduler {
	if m != nil {
		s.metrics = m
	}
	return s
}

// WithTimeout overrides DefaultJobTimeout.
func (s *Scheduler) WithTimeout(d time.Duration) *Scheduler {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Schedule registers job under spec. Each run gets a fresh correlation ID
// and is cancelled with ctx.
func (s *Scheduler) Schedule(ctx context.Context, name, spec string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(observability.NewRequestContext(ctx, ""), s.timeout)
		defer cancel()
		runCtx = observability.WithOperation(runCtx, name)

		timer := observability.StartTimer(name).WithLogger(s.logger).WithMetrics(s.metrics)
		timer.StopWithError(job(runCtx))
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	return id, nil
}

// Next reports when the entry fires next. It is zero before Start.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
