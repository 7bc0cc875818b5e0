package similarity

import (
	"context"
	"sync"
	"time"
)

// Embedding is the stored vector for one project.
type Embedding struct {
	ProjectID  string    `json:"project_id"`
	Vector     []float64 `json:"vector"`
	ComputedAt time.Time `json:"computed_at"`
}

// Edge is one undirected similarity pair. ProjectA is always the
// lexicographically smaller project id; stores reject nothing but callers
// go through CanonicalPair so a pair has exactly one representation.
type Edge struct {
	ProjectA   string    `json:"project_a"`
	ProjectB   string    `json:"project_b"`
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}

// CanonicalPair orders two project ids so the lexicographically smaller
// one comes first.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// EmbeddingStore persists project embeddings.
type EmbeddingStore interface {
	// UpsertEmbedding stores an embedding, overwriting any prior vector
	// for the project. Reports whether a new row was inserted.
	UpsertEmbedding(ctx context.Context, e Embedding) (bool, error)

	// ListEmbeddings returns all stored embeddings.
	ListEmbeddings(ctx context.Context) ([]Embedding, error)
}

// EdgeStore persists the pairwise similarity graph.
type EdgeStore interface {
	// UpsertEdge stores an edge keyed by its canonical pair, overwriting
	// any prior score. Reports whether a new row was inserted.
	UpsertEdge(ctx context.Context, e Edge) (bool, error)

	// ListEdges returns all stored edges.
	ListEdges(ctx context.Context) ([]Edge, error)
}

// InMemoryEmbeddingStore is an in-memory implementation of EmbeddingStore.
// Thread-safe via Mutex.
type InMemoryEmbeddingStore struct {
	mu         sync.Mutex
	embeddings map[string]Embedding
	order      []string
}

// NewInMemoryEmbeddingStore creates a new in-memory embedding store.
func NewInMemoryEmbeddingStore() *InMemoryEmbeddingStore {
	return &InMemoryEmbeddingStore{
		embeddings: make(map[string]Embedding),
	}
}

// UpsertEmbedding stores an embedding, overwriting any prior vector.
func (s *InMemoryEmbeddingStore) UpsertEmbedding(ctx context.Context, e Embedding) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.embeddings[e.ProjectID]
	if !exists {
		s.order = append(s.order, e.ProjectID)
	}
	copied := e
	copied.Vector = append([]float64(nil), e.Vector...)
	s.embeddings[e.ProjectID] = copied
	return !exists, nil
}

// ListEmbeddings returns all embeddings in first-insertion order.
func (s *InMemoryEmbeddingStore) ListEmbeddings(ctx context.Context) ([]Embedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Embedding, 0, len(s.order))
	for _, id := range s.order {
		e := s.embeddings[id]
		e.Vector = append([]float64(nil), e.Vector...)
		result = append(result, e)
	}
	return result, nil
}

// InMemoryEdgeStore is an in-memory implementation of EdgeStore.
// Thread-safe via Mutex.
type InMemoryEdgeStore struct {
	mu    sync.Mutex
	edges map[[2]string]Edge
	order [][2]string
}

// NewInMemoryEdgeStore creates a new in-memory edge store.
func NewInMemoryEdgeStore() *InMemoryEdgeStore {
	return &InMemoryEdgeStore{
		edges: make(map[[2]string]Edge),
	}
}

// UpsertEdge stores an edge keyed by its canonical pair.
func (s *InMemoryEdgeStore) UpsertEdge(ctx context.Context, e Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ProjectA, e.ProjectB = CanonicalPair(e.ProjectA, e.ProjectB)
	key := [2]string{e.ProjectA, e.ProjectB}
	_, exists := s.edges[key]
	if !exists {
		s.order = append(s.order, key)
	}
	s.edges[key] = e
	return !exists, nil
}

// ListEdges returns all edges in first-insertion order.
func (s *InMemoryEdgeStore) ListEdges(ctx context.Context) ([]Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Edge, 0, len(s.order))
	for _, key := range s.order {
		result = append(result, s.edges[key])
	}
	return result, nil
}
