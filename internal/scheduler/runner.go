// Package scheduler runs background jobs on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer      = otel.Tracer("construction_budget/scheduler")
	jobMeter       = otel.Meter("construction_budget/scheduler")
	jobDuration, _ = jobMeter.Float64Histogram("scheduler.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _    = jobMeter.Int64Counter("scheduler.job.total", metric.WithDescription("Total job runs by status"))
)

// Job is one unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// Runner runs a Job immediately, then every interval. A failed or panicking run is
// retried after retryBackoff instead.
type Runner struct {
	job          Job
	clock        clockwork.Clock
	interval     time.Duration
	retryBackoff time.Duration
	logger       *slog.Logger
}

// NewRunner creates a runner for job.
func NewRunner(job Job, clock clockwork.Clock, interval, retryBackoff time.Duration, logger *slog.Logger) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		job:          job,
		clock:        clock,
		interval:     interval,
		retryBackoff: retryBackoff,
		logger:       logger.With(slog.String("job", job.Name())),
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("Job runner started",
		slog.Duration("interval", r.interval),
		slog.Duration("retry_backoff", r.retryBackoff))
	for {
		delay := r.interval
		if err := r.runOnce(ctx); err != nil {
			delay = r.retryBackoff
			r.logger.Error("Job run failed, retrying after backoff",
				slog.String("error", err.Error()),
				slog.Duration("backoff", delay))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("Job runner stopped")
			return
		case <-r.clock.After(delay):
		}
	}
}

// runOnce executes the job once, converting a panic into an error.
func (r *Runner) runOnce(ctx context.Context) (err error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))
	ctx = middleware.WithLogger(ctx, logger)

	ctx, span := jobTracer.Start(ctx, "job.run",
		trace.WithAttributes(
			attribute.String("job.name", r.job.Name()),
			attribute.String("job.run_id", runID),
		),
	)
	defer span.End()

	start := r.clock.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job %s panicked: %v", r.job.Name(), rec)
		}
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		jobTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("job", r.job.Name()),
			attribute.String("status", status)))
		jobDuration.Record(ctx, r.clock.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("job", r.job.Name())))
	}()

	logger.Info("Job run starting")
	if err := r.job.Run(ctx, start); err != nil {
		return err
	}
	logger.Info("Job run finished", slog.Duration("took", r.clock.Since(start)))
	return nil
}
