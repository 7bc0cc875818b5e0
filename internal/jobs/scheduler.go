package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultRankingInterval is the default interval between ranking runs.
const DefaultRankingInterval = 10 * time.Minute

// DefaultSimilarityInterval is the default interval between similarity runs.
const DefaultSimilarityInterval = 30 * time.Minute

// DefaultRunTimeout is the default timeout for a single scheduled run.
const DefaultRunTimeout = 2 * time.Minute

// SchedulerConfig configures the periodic engine scheduler.
type SchedulerConfig struct {
	// RankingInterval is the duration between ranking recomputes.
	RankingInterval time.Duration
	// SimilarityInterval is the duration between similarity recomputes.
	SimilarityInterval time.Duration
	// Timeout for each scheduled run.
	Timeout time.Duration
	// Logger for scheduler activity.
	Logger *slog.Logger
}

// Scheduled binds the engine runs the scheduler drives. Matching is
// request-triggered and has no ticker.
type Scheduled struct {
	Ranking    Func
	Similarity Func
}

// Scheduler periodically triggers the ranking and similarity engines
// through the runner, so scheduled and on-demand runs share the same
// per-type exclusion.
type Scheduler struct {
	config SchedulerConfig
	runner *Runner
	jobs   Scheduled

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a new engine scheduler.
func NewScheduler(config SchedulerConfig, runner *Runner, jobs Scheduled) *Scheduler {
	if config.RankingInterval == 0 {
		config.RankingInterval = DefaultRankingInterval
	}
	if config.SimilarityInterval == 0 {
		config.SimilarityInterval = DefaultSimilarityInterval
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultRunTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Scheduler{
		config: config,
		runner: runner,
		jobs:   jobs,
	}
}

// Start begins the periodic scheduling.
// Returns immediately; the scheduler runs in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Stop signals the scheduler to stop and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run is the main loop for the scheduler.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	rankingTicker := time.NewTicker(s.config.RankingInterval)
	defer rankingTicker.Stop()
	similarityTicker := time.NewTicker(s.config.SimilarityInterval)
	defer similarityTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.config.Logger.Info("engine scheduler stopping due to context cancellation")
			return
		case <-s.stopCh:
			s.config.Logger.Info("engine scheduler stopping due to stop signal")
			return
		case <-rankingTicker.C:
			s.trigger(ctx, JobTypeRankingRecompute, s.jobs.Ranking)
		case <-similarityTicker.C:
			s.trigger(ctx, JobTypeSimilarityRecompute, s.jobs.Similarity)
		}
	}
}

// trigger runs one job synchronously under a per-cycle timeout. A cycle
// that overlaps a still-active run of the same type is skipped.
func (s *Scheduler) trigger(parentCtx context.Context, jobType string, fn Func) {
	if fn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(parentCtx, s.config.Timeout)
	defer cancel()

	if err := s.runner.Run(ctx, jobType, fn); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.config.Logger.Warn("scheduled run skipped, previous run still active",
				"job_type", jobType)
			return
		}
		s.config.Logger.Error("scheduled run failed",
			"job_type", jobType,
			"error", err)
	}
}

// TriggerNow immediately runs a scheduled job without waiting for its
// ticker. This is useful for testing or forcing immediate updates.
func (s *Scheduler) TriggerNow(ctx context.Context, jobType string) {
	switch jobType {
	case JobTypeRankingRecompute:
		s.trigger(ctx, jobType, s.jobs.Ranking)
	case JobTypeSimilarityRecompute:
		s.trigger(ctx, jobType, s.jobs.Similarity)
	}
}
