package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/project"
	"github.com/openreel/crewdeck/internal/tracing"
)

// ProjectRepository implements project.Repository using PostgreSQL.
type ProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB, logger *slog.Logger) *ProjectRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// CreateProject inserts a project and returns the generated id.
func (r *ProjectRepository) CreateProject(ctx context.Context, p project.Project) (id string, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "projects", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO projects (creator_id, title, abstract)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query, p.CreatorID, p.Title, p.Abstract).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert project: %w", err)
	}
	return id, nil
}

// ListProjects returns all projects ordered by creation time.
func (r *ProjectRepository) ListProjects(ctx context.Context) (projects []project.Project, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "projects", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, creator_id, title, abstract, impressions, created_at
		FROM projects
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Abstract,
			&p.Impressions, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project by id, or project.ErrProjectNotFound.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (result *project.Project, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "projects", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, creator_id, title, abstract, impressions, created_at
		FROM projects
		WHERE id = $1
	`
	var p project.Project
	err = r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.CreatorID,
		&p.Title, &p.Abstract, &p.Impressions, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, project.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &p, nil
}

// AddImpression atomically increments a project's impression counter.
func (r *ProjectRepository) AddImpression(ctx context.Context, id string) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "projects", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	query := `UPDATE projects SET impressions = impressions + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to add impression for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read impression result for %s: %w", id, err)
	}
	if affected == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}
