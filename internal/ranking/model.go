package ranking

import (
	"context"
	"sync"
	"time"
)

// Score is the per-project ranking row, upserted wholesale each run.
// Every normalized component lies in [0, 1]; Final is their fixed convex
// combination.
type Score struct {
	ProjectID    string    `json:"project_id"`
	Engagement   float64   `json:"engagement_score"`
	Freshness    float64   `json:"freshness_boost"`
	Diversity    float64   `json:"diversity_boost"`
	Underexposed float64   `json:"underexposed_boost"`
	Final        float64   `json:"final_score"`
	ComputedAt   time.Time `json:"computed_at"`
}

// PlatformStats is the singleton population summary row, overwritten
// wholesale each run.
type PlatformStats struct {
	CreatorCount   int       `json:"creator_count"`
	ProjectCount   int       `json:"project_count"`
	AvgFinalScore  float64   `json:"avg_final_score"`
	EngagementGini float64   `json:"engagement_gini"`
	ComputedAt     time.Time `json:"computed_at"`
}

// ScoreStore persists computed ranking scores.
type ScoreStore interface {
	// UpsertScore stores a score, overwriting any prior row for the
	// project. Reports whether a new row was inserted.
	UpsertScore(ctx context.Context, score Score) (bool, error)

	// ListScores returns all stored scores.
	ListScores(ctx context.Context) ([]Score, error)
}

// StatsStore persists the singleton platform stats row.
type StatsStore interface {
	// UpsertStats overwrites the singleton stats row.
	UpsertStats(ctx context.Context, stats PlatformStats) error

	// GetStats returns the stats row, or nil when no run has completed yet.
	GetStats(ctx context.Context) (*PlatformStats, error)
}

// InMemoryScoreStore is an in-memory implementation of ScoreStore.
// Used for testing and development. Thread-safe via Mutex.
type InMemoryScoreStore struct {
	mu     sync.Mutex
	scores map[string]Score
	order  []string
}

// NewInMemoryScoreStore creates a new in-memory score store.
func NewInMemoryScoreStore() *InMemoryScoreStore {
	return &InMemoryScoreStore{
		scores: make(map[string]Score),
	}
}

// UpsertScore stores a score, overwriting any prior row for the project.
func (s *InMemoryScoreStore) UpsertScore(ctx context.Context, score Score) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.scores[score.ProjectID]
	if !exists {
		s.order = append(s.order, score.ProjectID)
	}
	s.scores[score.ProjectID] = score
	return !exists, nil
}

// ListScores returns all stored scores in first-insertion order.
func (s *InMemoryScoreStore) ListScores(ctx context.Context) ([]Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Score, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.scores[id])
	}
	return result, nil
}

// InMemoryStatsStore is an in-memory implementation of StatsStore.
// Thread-safe via Mutex.
type InMemoryStatsStore struct {
	mu    sync.Mutex
	stats *PlatformStats
}

// NewInMemoryStatsStore creates a new in-memory stats store.
func NewInMemoryStatsStore() *InMemoryStatsStore {
	return &InMemoryStatsStore{}
}

// UpsertStats overwrites the singleton stats row.
func (s *InMemoryStatsStore) UpsertStats(ctx context.Context, stats PlatformStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := stats
	s.stats = &copied
	return nil
}

// GetStats returns the stats row, or nil when no run has completed yet.
func (s *InMemoryStatsStore) GetStats(ctx context.Context) (*PlatformStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil, nil
	}
	copied := *s.stats
	return &copied, nil
}
