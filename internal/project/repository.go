package project

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the data access operations the engines need for projects.
type Repository interface {
	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]Project, error)

	// GetProject retrieves a project by id.
	// Returns ErrProjectNotFound when the id does not exist.
	GetProject(ctx context.Context, id string) (*Project, error)

	// AddImpression increments a project's exposure counter.
	AddImpression(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
	order    []string
}

// NewInMemoryRepository creates a new in-memory project repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects: make(map[string]*Project),
	}
}

// Add inserts a project, generating an id when one is not set.
// Returns the stored project's id.
func (r *InMemoryRepository) Add(p Project) string {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.projects[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	stored := p
	r.projects[p.ID] = &stored
	return p.ID
}

// ListProjects returns all projects in insertion order.
func (r *InMemoryRepository) ListProjects(ctx context.Context) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Project, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.projects[id])
	}
	return result, nil
}

// GetProject retrieves a project by id.
func (r *InMemoryRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	copied := *p
	return &copied, nil
}

// AddImpression increments a project's exposure counter.
func (r *InMemoryRepository) AddImpression(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return ErrProjectNotFound
	}
	p.Impressions++
	return nil
}
