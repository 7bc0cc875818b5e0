package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the data access operations for engagements.
type Repository interface {
	// Insert stores an engagement unless one already exists for the same
	// (project, creator) pair. Reports whether a row was inserted;
	// duplicates return (false, nil), not an error.
	Insert(ctx context.Context, e Engagement) (bool, error)

	// ListByProject returns all engagements for a project.
	ListByProject(ctx context.Context, projectID string) ([]Engagement, error)
}

type pairKey struct {
	projectID string
	creatorID string
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via Mutex.
type InMemoryRepository struct {
	mu     sync.Mutex
	byPair map[pairKey]Engagement
	order  []pairKey
}

// NewInMemoryRepository creates a new in-memory engagement repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byPair: make(map[pairKey]Engagement),
	}
}

// Insert stores a new engagement, ignoring duplicates per (project, creator).
func (r *InMemoryRepository) Insert(ctx context.Context, e Engagement) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	key := pairKey{projectID: e.ProjectID, creatorID: e.CreatorID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPair[key]; exists {
		return false, nil
	}
	r.byPair[key] = e
	r.order = append(r.order, key)
	return true, nil
}

// ListByProject returns all engagements for a project in insertion order.
func (r *InMemoryRepository) ListByProject(ctx context.Context, projectID string) ([]Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Engagement
	for _, key := range r.order {
		if key.projectID == projectID {
			result = append(result, r.byPair[key])
		}
	}
	return result, nil
}
