package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fxamacker/cbor/v2"

	"github.com/openreel/crewdeck/internal/similarity"
	"github.com/openreel/crewdeck/internal/tracing"
)

// EmbeddingStore implements similarity.EmbeddingStore using PostgreSQL.
// Vectors are stored as CBOR-encoded bytea.
type EmbeddingStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEmbeddingStore creates a new EmbeddingStore.
func NewEmbeddingStore(db *sql.DB, logger *slog.Logger) *EmbeddingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingStore{
		db:     db,
		logger: logger,
	}
}

// UpsertEmbedding stores an embedding, overwriting any prior vector for
// the project.
func (s *EmbeddingStore) UpsertEmbedding(ctx context.Context, e similarity.Embedding) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "project_embeddings", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	payload, err := cbor.Marshal(e.Vector)
	if err != nil {
		return false, fmt.Errorf("failed to encode embedding for %s: %w", e.ProjectID, err)
	}

	// xmax = 0 only for freshly inserted rows.
	query := `
		INSERT INTO project_embeddings (project_id, vector, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO UPDATE SET
			vector = EXCLUDED.vector,
			computed_at = EXCLUDED.computed_at
		RETURNING (xmax = 0)
	`
	err = s.db.QueryRowContext(ctx, query, e.ProjectID, payload, e.ComputedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert embedding for %s: %w", e.ProjectID, err)
	}
	return inserted, nil
}

// ListEmbeddings returns all embeddings ordered by project id.
func (s *EmbeddingStore) ListEmbeddings(ctx context.Context) (embeddings []similarity.Embedding, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "project_embeddings", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT project_id, vector, computed_at
		FROM project_embeddings
		ORDER BY project_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e similarity.Embedding
		var payload []byte
		if err := rows.Scan(&e.ProjectID, &payload, &e.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		if err := cbor.Unmarshal(payload, &e.Vector); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for %s: %w", e.ProjectID, err)
		}
		embeddings = append(embeddings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}
	return embeddings, nil
}

// SimilarityEdgeStore implements similarity.EdgeStore using PostgreSQL.
type SimilarityEdgeStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSimilarityEdgeStore creates a new SimilarityEdgeStore.
func NewSimilarityEdgeStore(db *sql.DB, logger *slog.Logger) *SimilarityEdgeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilarityEdgeStore{
		db:     db,
		logger: logger,
	}
}

// UpsertEdge stores an edge keyed by its canonical pair. The table's
// check constraint rejects non-canonical rows, so the pair is
// canonicalized here as well.
func (s *SimilarityEdgeStore) UpsertEdge(ctx context.Context, e similarity.Edge) (inserted bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "project_similarity", tracing.DBOperationUpsert)
	defer func() { endSpan(err) }()

	e.ProjectA, e.ProjectB = similarity.CanonicalPair(e.ProjectA, e.ProjectB)

	// xmax = 0 only for freshly inserted rows.
	query := `
		INSERT INTO project_similarity (project_a, project_b, score, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_a, project_b) DO UPDATE SET
			score = EXCLUDED.score,
			computed_at = EXCLUDED.computed_at
		RETURNING (xmax = 0)
	`
	err = s.db.QueryRowContext(ctx, query, e.ProjectA, e.ProjectB, e.Score, e.ComputedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert edge (%s, %s): %w", e.ProjectA, e.ProjectB, err)
	}
	return inserted, nil
}

// ListEdges returns all edges ordered by canonical pair.
func (s *SimilarityEdgeStore) ListEdges(ctx context.Context) (edges []similarity.Edge, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "project_similarity", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT project_a, project_b, score, computed_at
		FROM project_similarity
		ORDER BY project_a, project_b
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e similarity.Edge
		if err := rows.Scan(&e.ProjectA, &e.ProjectB, &e.Score, &e.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return edges, nil
}
