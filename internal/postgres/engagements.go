package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/engagement"
	"github.com/openreel/crewdeck/internal/tracing"
)

// EngagementRepository implements engagement.Repository using PostgreSQL.
type EngagementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEngagementRepository creates a new EngagementRepository.
func NewEngagementRepository(db *sql.DB, logger *slog.Logger) *EngagementRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngagementRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores an engagement. A second engagement for the same
// (project, creator) pair is deduplicated and reported as not inserted.
func (r *EngagementRepository) Insert(ctx context.Context, e engagement.Engagement) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "engagements", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO engagements (project_id, creator_id, reaction, weight)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, creator_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, e.ProjectID, e.CreatorID, e.Reaction, e.Weight)
	if err != nil {
		return false, fmt.Errorf("failed to insert engagement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read engagement insert result: %w", err)
	}
	if affected == 0 {
		r.logger.Debug("skipping duplicate engagement",
			"project_id", e.ProjectID,
			"creator_id", e.CreatorID)
		return false, nil
	}
	return true, nil
}

// ListByProject returns all engagements for a project ordered by creation
// time.
func (r *EngagementRepository) ListByProject(ctx context.Context, projectID string) (engagements []engagement.Engagement, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "engagements", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, project_id, creator_id, reaction, weight, created_at
		FROM engagements
		WHERE project_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements for %s: %w", projectID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e engagement.Engagement
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.CreatorID, &e.Reaction,
			&e.Weight, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		engagements = append(engagements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagements: %w", err)
	}
	return engagements, nil
}
