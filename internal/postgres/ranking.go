package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/ranking"
	"github.com/openreel/crewdeck/internal/tracing"
)

// RankScoreStore implements ranking.ScoreStore using PostgreSQL.
type RankScoreStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRankScoreStore creates a new RankScoreStore.
func NewRankScoreStore(db *sql.DB, logger *slog.Logger) *RankScoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankScoreStore{
		db:     db,
		logger: logger,
	}
}

// UpsertScore stores a score, overwriting any prior row for the project.
func (s *RankScoreStore) UpsertScore(ctx context.Context, score ranking.Score) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_scores", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	// xmax = 0 only for freshly inserted rows.
	query := `
		INSERT INTO rank_scores
			(project_id, engagement_score, freshness_boost, diversity_boost, underexposed_boost, final_score, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id) DO UPDATE SET
			engagement_score = EXCLUDED.engagement_score,
			freshness_boost = EXCLUDED.freshness_boost,
			diversity_boost = EXCLUDED.diversity_boost,
			underexposed_boost = EXCLUDED.underexposed_boost,
			final_score = EXCLUDED.final_score,
			computed_at = EXCLUDED.computed_at
		RETURNING (xmax = 0)
	`
	err = s.db.QueryRowContext(ctx, query,
		score.ProjectID, score.Engagement, score.Freshness, score.Diversity,
		score.Underexposed, score.Final, score.ComputedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert score for %s: %w", score.ProjectID, err)
	}
	return inserted, nil
}

// ListScores returns all scores ordered by final score descending.
func (s *RankScoreStore) ListScores(ctx context.Context) (scores []ranking.Score, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_scores", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT project_id, engagement_score, freshness_boost, diversity_boost, underexposed_boost, final_score, computed_at
		FROM rank_scores
		ORDER BY final_score DESC, project_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc ranking.Score
		if err := rows.Scan(&sc.ProjectID, &sc.Engagement, &sc.Freshness,
			&sc.Diversity, &sc.Underexposed, &sc.Final, &sc.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}
	return scores, nil
}

// PlatformStatsStore implements ranking.StatsStore using PostgreSQL. The
// stats table holds a single row that is overwritten each run.
type PlatformStatsStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPlatformStatsStore creates a new PlatformStatsStore.
func NewPlatformStatsStore(db *sql.DB, logger *slog.Logger) *PlatformStatsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlatformStatsStore{
		db:     db,
		logger: logger,
	}
}

// UpsertStats overwrites the singleton stats row.
func (s *PlatformStatsStore) UpsertStats(ctx context.Context, stats ranking.PlatformStats) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "platform_stats", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO platform_stats
			(id, creator_count, project_count, avg_final_score, engagement_gini, computed_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			creator_count = EXCLUDED.creator_count,
			project_count = EXCLUDED.project_count,
			avg_final_score = EXCLUDED.avg_final_score,
			engagement_gini = EXCLUDED.engagement_gini,
			computed_at = EXCLUDED.computed_at
	`
	if _, err = s.db.ExecContext(ctx, query, stats.CreatorCount, stats.ProjectCount,
		stats.AvgFinalScore, stats.EngagementGini, stats.ComputedAt); err != nil {
		return fmt.Errorf("failed to upsert platform stats: %w", err)
	}
	return nil
}

// GetStats returns the stats row, or nil when no run has completed yet.
func (s *PlatformStatsStore) GetStats(ctx context.Context) (result *ranking.PlatformStats, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "platform_stats", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT creator_count, project_count, avg_final_score, engagement_gini, computed_at
		FROM platform_stats
		WHERE id = 1
	`
	var stats ranking.PlatformStats
	err = s.db.QueryRowContext(ctx, query).Scan(&stats.CreatorCount, &stats.ProjectCount,
		&stats.AvgFinalScore, &stats.EngagementGini, &stats.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	return &stats, nil
}
