package creator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the data access operations the engines need for creators.
type Repository interface {
	// ListCreators returns all creators.
	ListCreators(ctx context.Context) ([]Creator, error)

	// GetCreator retrieves a creator by id.
	// Returns ErrCreatorNotFound when the id does not exist.
	GetCreator(ctx context.Context, id string) (*Creator, error)

	// UpdateCreatorStats writes the derived (points, level) pair onto the
	// creator record. Only the reward ledger calls this.
	UpdateCreatorStats(ctx context.Context, id string, points float64, level int) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	creators map[string]*Creator
	order    []string
}

// NewInMemoryRepository creates a new in-memory creator repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		creators: make(map[string]*Creator),
	}
}

// Add inserts a creator, generating an id when one is not set.
// Returns the stored creator's id.
func (r *InMemoryRepository) Add(c Creator) string {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Level == 0 {
		c.Level = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.creators[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	stored := c
	r.creators[c.ID] = &stored
	return c.ID
}

// ListCreators returns all creators in insertion order.
func (r *InMemoryRepository) ListCreators(ctx context.Context) ([]Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Creator, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.creators[id])
	}
	return result, nil
}

// GetCreator retrieves a creator by id.
func (r *InMemoryRepository) GetCreator(ctx context.Context, id string) (*Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.creators[id]
	if !ok {
		return nil, ErrCreatorNotFound
	}
	copied := *c
	return &copied, nil
}

// UpdateCreatorStats writes the derived points and level onto the creator record.
func (r *InMemoryRepository) UpdateCreatorStats(ctx context.Context, id string, points float64, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.creators[id]
	if !ok {
		return ErrCreatorNotFound
	}
	c.Points = points
	c.Level = level
	return nil
}
