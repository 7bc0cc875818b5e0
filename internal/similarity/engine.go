package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/openreel/crewdeck/internal/project"
	"github.com/openreel/crewdeck/internal/tracing"
)

// Config configures the similarity engine.
type Config struct {
	// Logger for run activity.
	Logger *slog.Logger
	// Metrics for run observability; nil disables recording.
	Metrics *Metrics
	// Now supplies the current time; defaults to time.Now. Tests override it.
	Now func() time.Time
}

// Engine builds project embeddings and the pairwise similarity graph.
// Stateless between runs; all collaborators are injected.
type Engine struct {
	config     Config
	projects   project.Repository
	embeddings EmbeddingStore
	edges      EdgeStore
}

// NewEngine creates a similarity engine.
func NewEngine(config Config, projects project.Repository, embeddings EmbeddingStore, edges EdgeStore) *Engine {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Engine{
		config:     config,
		projects:   projects,
		embeddings: embeddings,
		edges:      edges,
	}
}

// Reindex recomputes and upserts the embedding for every project from its
// title and abstract. dim <= 0 falls back to DefaultDim. Returns the number
// of projects embedded.
func (e *Engine) Reindex(ctx context.Context, dim int) (count int, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "similarity.reindex")
	defer func() { endSpan(err) }()

	if dim <= 0 {
		dim = DefaultDim
	}
	e.config.Logger.Info("starting embedding reindex", "dim", dim)

	projects, err := e.projects.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	computedAt := e.config.Now().UTC()
	for _, p := range projects {
		text := strings.TrimSpace(p.Title + " " + p.Abstract)
		if _, err := e.embeddings.UpsertEmbedding(ctx, Embedding{
			ProjectID:  p.ID,
			Vector:     Embed(text, dim),
			ComputedAt: computedAt,
		}); err != nil {
			return count, fmt.Errorf("failed to upsert embedding for project %s: %w", p.ID, err)
		}
		count++
	}

	e.config.Logger.Info("embedding reindex completed", "projects", count, "dim", dim)
	return count, nil
}

// RecomputePairs rebuilds the similarity graph from all stored embeddings,
// upserting one edge per unordered pair. Returns the number of edges
// written.
func (e *Engine) RecomputePairs(ctx context.Context) (pairs int, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "similarity.recompute_pairs")
	defer func() { endSpan(err) }()

	e.config.Logger.Info("starting pairwise similarity recompute")

	embeddings, err := e.embeddings.ListEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list embeddings: %w", err)
	}

	computedAt := e.config.Now().UTC()
	for i := 0; i < len(embeddings); i++ {
		for j := i + 1; j < len(embeddings); j++ {
			a, b := CanonicalPair(embeddings[i].ProjectID, embeddings[j].ProjectID)
			edge := Edge{
				ProjectA:   a,
				ProjectB:   b,
				Score:      Cosine(embeddings[i].Vector, embeddings[j].Vector),
				ComputedAt: computedAt,
			}
			if _, err := e.edges.UpsertEdge(ctx, edge); err != nil {
				return pairs, fmt.Errorf("failed to upsert edge (%s, %s): %w", a, b, err)
			}
			pairs++
		}
	}

	tracing.SetAttributes(ctx, attribute.Int("similarity.pairs", pairs))
	e.config.Logger.Info("pairwise similarity recompute completed",
		"embeddings", len(embeddings),
		"pairs", pairs)
	return pairs, nil
}

// Run reindexes embeddings and then recomputes the pairwise graph in one
// pass, recording run metrics on success.
func (e *Engine) Run(ctx context.Context, dim int) error {
	embedded, err := e.Reindex(ctx, dim)
	if err != nil {
		return err
	}
	pairs, err := e.RecomputePairs(ctx)
	if err != nil {
		return err
	}
	if e.config.Metrics != nil {
		e.config.Metrics.ObserveRun(embedded, pairs, e.config.Now().Unix())
	}
	return nil
}
