package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/openreel/crewdeck/internal/collab"
	"github.com/openreel/crewdeck/internal/tracing"
)

// CollabRequestRepository implements collab.RequestRepository using
// PostgreSQL.
type CollabRequestRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCollabRequestRepository creates a new CollabRequestRepository.
func NewCollabRequestRepository(db *sql.DB, logger *slog.Logger) *CollabRequestRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollabRequestRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRequest inserts a collaboration request and returns the generated
// id.
func (r *CollabRequestRepository) CreateRequest(ctx context.Context, req collab.Request) (id string, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "collab_requests", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	query := `
		INSERT INTO collab_requests (requester_id, project_id, role_needed, skills_needed, location_pref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query, req.RequesterID, nullableID(req.ProjectID),
		req.RoleNeeded, pq.Array(req.SkillsNeeded), req.LocationPref).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert collab request: %w", err)
	}
	return id, nil
}

// GetRequest returns a request by id, or collab.ErrRequestNotFound.
func (r *CollabRequestRepository) GetRequest(ctx context.Context, id string) (result *collab.Request, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "collab_requests", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, requester_id, COALESCE(project_id::text, ''), role_needed, skills_needed, location_pref, created_at
		FROM collab_requests
		WHERE id = $1
	`
	var req collab.Request
	err = r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.RequesterID,
		&req.ProjectID, &req.RoleNeeded, pq.Array(&req.SkillsNeeded),
		&req.LocationPref, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, collab.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collab request %s: %w", id, err)
	}
	return &req, nil
}

// ListRequests returns all requests ordered by creation time.
func (r *CollabRequestRepository) ListRequests(ctx context.Context) (requests []collab.Request, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "collab_requests", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, requester_id, COALESCE(project_id::text, ''), role_needed, skills_needed, location_pref, created_at
		FROM collab_requests
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collab requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var req collab.Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.ProjectID,
			&req.RoleNeeded, pq.Array(&req.SkillsNeeded), &req.LocationPref,
			&req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collab request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collab requests: %w", err)
	}
	return requests, nil
}

// CollabMatchStore implements collab.MatchStore using PostgreSQL.
type CollabMatchStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCollabMatchStore creates a new CollabMatchStore.
func NewCollabMatchStore(db *sql.DB, logger *slog.Logger) *CollabMatchStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollabMatchStore{
		db:     db,
		logger: logger,
	}
}

// UpsertMatch stores a match keyed by (request, creator), overwriting any
// prior score.
func (s *CollabMatchStore) UpsertMatch(ctx context.Context, m collab.Match) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "collab_matches", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	// xmax = 0 only for freshly inserted rows.
	query := `
		INSERT INTO collab_matches (request_id, creator_id, match_score, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (request_id, creator_id) DO UPDATE SET
			match_score = EXCLUDED.match_score,
			computed_at = EXCLUDED.computed_at
		RETURNING (xmax = 0)
	`
	err = s.db.QueryRowContext(ctx, query, m.RequestID, m.CreatorID, m.Score, m.ComputedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert match (%s, %s): %w", m.RequestID, m.CreatorID, err)
	}
	return inserted, nil
}

// ListMatches returns all matches for a request ordered by score
// descending.
func (s *CollabMatchStore) ListMatches(ctx context.Context, requestID string) (matches []collab.Match, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "collab_matches", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT request_id, creator_id, match_score, computed_at
		FROM collab_matches
		WHERE request_id = $1
		ORDER BY match_score DESC, creator_id
	`
	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for %s: %w", requestID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m collab.Match
		if err := rows.Scan(&m.RequestID, &m.CreatorID, &m.Score, &m.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}

// nullableID maps an empty string id to SQL NULL.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
