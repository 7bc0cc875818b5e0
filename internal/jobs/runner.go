package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunInProgress is returned when a run of the same job type is already
// active. Engines are single-flight per type; overlapping triggers are
// rejected, not queued.
var ErrRunInProgress = errors.New("job run already in progress")

// Func is a single engine run.
type Func func(ctx context.Context) error

// Runner serializes runs per job type and reports every execution to the
// job metrics. Safe for concurrent use.
type Runner struct {
	logger  *slog.Logger
	metrics Reporter

	mu     sync.Mutex
	active map[string]bool
}

// NewRunner creates a runner. metrics may be nil to disable reporting.
func NewRunner(logger *slog.Logger, metrics Reporter) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:  logger,
		metrics: metrics,
		active:  make(map[string]bool),
	}
}

// Run executes fn under the job type's exclusion guard. A second Run for
// the same type while one is active returns ErrRunInProgress without
// executing fn. Distinct job types run independently.
func (r *Runner) Run(ctx context.Context, jobType string, fn Func) error {
	if !r.acquire(jobType) {
		return fmt.Errorf("%s: %w", jobType, ErrRunInProgress)
	}
	defer r.release(jobType)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	if r.metrics != nil {
		r.metrics.IncJobsTotal(jobType, status)
		r.metrics.ObserveJobDuration(jobType, duration)
		if err != nil {
			r.metrics.IncJobErrors(jobType, classifyError(err))
		}
	}

	if err != nil {
		return fmt.Errorf("job %s failed: %w", jobType, err)
	}
	return nil
}

// RunBackground dispatches fn on its own goroutine. The trigger never
// observes the outcome; failures are logged and counted instead of
// returned, and an already-active run of the same type is skipped with a
// warning.
func (r *Runner) RunBackground(ctx context.Context, jobType string, fn Func) {
	go func() {
		err := r.Run(ctx, jobType, fn)
		if err == nil {
			return
		}
		if errors.Is(err, ErrRunInProgress) {
			r.logger.Warn("background job skipped, run already in progress",
				"job_type", jobType)
			return
		}
		r.logger.Error("background job failed",
			"job_type", jobType,
			"error", err)
	}()
}

// IsActive reports whether a run of the given type is in flight.
func (r *Runner) IsActive(jobType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[jobType]
}

func (r *Runner) acquire(jobType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[jobType] {
		return false
	}
	r.active[jobType] = true
	return true
}

func (r *Runner) release(jobType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, jobType)
}

// classifyError maps a run failure to a metrics error type label.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "run_error"
	}
}
