package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerRunSuccess(t *testing.T) {
	r := NewRunner(testLogger(), nil)

	var calls int
	err := r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if r.IsActive(JobTypeRankingRecompute) {
		t.Error("job still active after Run returned")
	}
}

func TestRunnerRunPropagatesError(t *testing.T) {
	r := NewRunner(testLogger(), nil)

	wantErr := errors.New("engine exploded")
	err := r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestRunnerExcludesConcurrentRuns(t *testing.T) {
	r := NewRunner(testLogger(), nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		t.Error("second run executed while first was active")
		return nil
	})
	if !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Run() error = %v, want ErrRunInProgress", err)
	}

	close(release)
	wg.Wait()

	// Guard is released after the first run finishes.
	if err := r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Errorf("Run() after release error = %v", err)
	}
}

func TestRunnerDistinctJobTypesRunIndependently(t *testing.T) {
	r := NewRunner(testLogger(), nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if err := r.Run(context.Background(), JobTypeSimilarityRecompute, func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Errorf("different job type blocked: %v", err)
	}

	close(release)
	wg.Wait()
}

func TestRunnerReportsMetrics(t *testing.T) {
	m := NewMetrics()
	r := NewRunner(testLogger(), m)

	_ = r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		return nil
	})
	_ = r.Run(context.Background(), JobTypeRankingRecompute, func(ctx context.Context) error {
		return errors.New("boom")
	})

	if got := getCounterVecValue(m.jobsTotal, JobTypeRankingRecompute, StatusSuccess); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := getCounterVecValue(m.jobsTotal, JobTypeRankingRecompute, StatusFailure); got != 1 {
		t.Errorf("failure count = %v, want 1", got)
	}
	if got := getCounterVecValue(m.jobErrors, JobTypeRankingRecompute, "run_error"); got != 1 {
		t.Errorf("run_error count = %v, want 1", got)
	}
	if got := getHistogramVecSampleCount(m.jobsDuration, JobTypeRankingRecompute); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestRunnerClassifiesTimeout(t *testing.T) {
	m := NewMetrics()
	r := NewRunner(testLogger(), m)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_ = r.Run(ctx, JobTypeSimilarityRecompute, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if got := getCounterVecValue(m.jobErrors, JobTypeSimilarityRecompute, "timeout"); got != 1 {
		t.Errorf("timeout count = %v, want 1", got)
	}
}

func TestRunBackgroundSwallowsFailure(t *testing.T) {
	r := NewRunner(testLogger(), nil)

	done := make(chan struct{})
	r.RunBackground(context.Background(), JobTypeCollabMatching, func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background job never ran")
	}
}
