package similarity

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/openreel/crewdeck/internal/project"
)

func newTestEngine(t *testing.T) (*Engine, *project.InMemoryRepository, *InMemoryEmbeddingStore, *InMemoryEdgeStore) {
	t.Helper()

	projects := project.NewInMemoryRepository()
	embeddings := NewInMemoryEmbeddingStore()
	edges := NewInMemoryEdgeStore()

	engine := NewEngine(Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}, projects, embeddings, edges)

	return engine, projects, embeddings, edges
}

func TestReindexDefaultDim(t *testing.T) {
	engine, projects, embeddings, _ := newTestEngine(t)
	projects.Add(project.Project{Title: "night drone reel", Abstract: "aerial"})

	count, err := engine.Reindex(context.Background(), 0)
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	stored, err := embeddings.ListEmbeddings(context.Background())
	if err != nil {
		t.Fatalf("ListEmbeddings() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d embeddings, want 1", len(stored))
	}
	if len(stored[0].Vector) != DefaultDim {
		t.Errorf("vector dim = %d, want %d", len(stored[0].Vector), DefaultDim)
	}
}

func TestRunBuildsCompleteGraph(t *testing.T) {
	engine, projects, _, edges := newTestEngine(t)
	projects.Add(project.Project{Title: "documentary short", Abstract: "mountain climbing footage"})
	projects.Add(project.Project{Title: "documentary short", Abstract: "mountain climbing footage"})
	projects.Add(project.Project{Title: "synthwave album", Abstract: "retro sound design"})

	if err := engine.Run(context.Background(), 8); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stored, err := edges.ListEdges(context.Background())
	if err != nil {
		t.Fatalf("ListEdges() error = %v", err)
	}
	// 3 projects give C(3,2) = 3 unordered pairs.
	if len(stored) != 3 {
		t.Fatalf("got %d edges, want 3", len(stored))
	}

	var identicalPairs, otherPairs int
	for _, e := range stored {
		if e.ProjectA >= e.ProjectB {
			t.Errorf("edge (%s, %s) not in canonical order", e.ProjectA, e.ProjectB)
		}
		if e.Score < -1-1e-9 || e.Score > 1+1e-9 {
			t.Errorf("edge score %v outside [-1, 1]", e.Score)
		}
		if math.Abs(e.Score-1.0) < 1e-9 {
			identicalPairs++
		} else {
			otherPairs++
		}
	}
	// The two identical projects form exactly one perfect-score pair.
	if identicalPairs != 1 {
		t.Errorf("got %d perfect-score pairs, want 1", identicalPairs)
	}
	if otherPairs != 2 {
		t.Errorf("got %d non-identical pairs, want 2", otherPairs)
	}
}

func TestRunIdempotent(t *testing.T) {
	engine, projects, _, edges := newTestEngine(t)
	projects.Add(project.Project{Title: "one", Abstract: "alpha"})
	projects.Add(project.Project{Title: "two", Abstract: "beta"})

	if err := engine.Run(context.Background(), 8); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first, err := edges.ListEdges(context.Background())
	if err != nil {
		t.Fatalf("ListEdges() error = %v", err)
	}

	if err := engine.Run(context.Background(), 8); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	second, err := edges.ListEdges(context.Background())
	if err != nil {
		t.Fatalf("ListEdges() error = %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("edge counts = (%d, %d), want (1, 1)", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("edge changed across runs: %+v vs %+v", first[0], second[0])
	}
}

func TestRecomputePairsEmpty(t *testing.T) {
	engine, _, _, edges := newTestEngine(t)

	pairs, err := engine.RecomputePairs(context.Background())
	if err != nil {
		t.Fatalf("RecomputePairs() error = %v", err)
	}
	if pairs != 0 {
		t.Errorf("pairs = %d, want 0", pairs)
	}

	stored, err := edges.ListEdges(context.Background())
	if err != nil {
		t.Fatalf("ListEdges() error = %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("got %d edges, want 0", len(stored))
	}
}

func TestReindexOverridesDim(t *testing.T) {
	engine, projects, embeddings, _ := newTestEngine(t)
	projects.Add(project.Project{Title: "wide vector", Abstract: "test"})

	if _, err := engine.Reindex(context.Background(), 16); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	stored, err := embeddings.ListEmbeddings(context.Background())
	if err != nil {
		t.Fatalf("ListEmbeddings() error = %v", err)
	}
	if len(stored[0].Vector) != 16 {
		t.Errorf("vector dim = %d, want 16", len(stored[0].Vector))
	}
}
