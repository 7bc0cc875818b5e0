package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/openreel/crewdeck/internal/creator"
	"github.com/openreel/crewdeck/internal/tracing"
)

// CreatorRepository implements creator.Repository using PostgreSQL.
type CreatorRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCreatorRepository creates a new CreatorRepository.
func NewCreatorRepository(db *sql.DB, logger *slog.Logger) *CreatorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreatorRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCreator inserts a creator and returns the generated id.
func (r *CreatorRepository) CreateCreator(ctx context.Context, c creator.Creator) (id string, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creators", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO creators (display_name, skills, location, availability)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		c.DisplayName, pq.Array(c.Skills), c.Location, c.Availability).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert creator: %w", err)
	}
	return id, nil
}

// ListCreators returns all creators ordered by creation time.
func (r *CreatorRepository) ListCreators(ctx context.Context) (creators []creator.Creator, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creators", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, display_name, skills, location, availability, points, level, created_at
		FROM creators
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c creator.Creator
		if err := rows.Scan(&c.ID, &c.DisplayName, pq.Array(&c.Skills),
			&c.Location, &c.Availability, &c.Points, &c.Level, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate creators: %w", err)
	}
	return creators, nil
}

// GetCreator returns a creator by id, or creator.ErrCreatorNotFound.
func (r *CreatorRepository) GetCreator(ctx context.Context, id string) (result *creator.Creator, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creators", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, display_name, skills, location, availability, points, level, created_at
		FROM creators
		WHERE id = $1
	`
	var c creator.Creator
	err = r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.DisplayName,
		pq.Array(&c.Skills), &c.Location, &c.Availability, &c.Points, &c.Level, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, creator.ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator %s: %w", id, err)
	}
	return &c, nil
}

// UpdateCreatorStats writes the derived points total and level back to the
// creator record.
func (r *CreatorRepository) UpdateCreatorStats(ctx context.Context, id string, points float64, level int) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creators", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	query := `UPDATE creators SET points = $2, level = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, points, level)
	if err != nil {
		return fmt.Errorf("failed to update creator stats for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for %s: %w", id, err)
	}
	if affected == 0 {
		return creator.ErrCreatorNotFound
	}
	return nil
}
