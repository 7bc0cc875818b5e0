package collab

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RequestRepository provides access to collaboration requests.
type RequestRepository interface {
	// GetRequest returns a request by id, or ErrRequestNotFound.
	GetRequest(ctx context.Context, id string) (*Request, error)

	// ListRequests returns all requests.
	ListRequests(ctx context.Context) ([]Request, error)
}

// MatchStore persists matching engine output.
type MatchStore interface {
	// UpsertMatch stores a match keyed by (request, creator), overwriting
	// any prior score. Reports whether a new row was inserted.
	UpsertMatch(ctx context.Context, m Match) (bool, error)

	// ListMatches returns all matches for a request.
	ListMatches(ctx context.Context, requestID string) ([]Match, error)
}

// InMemoryRequestRepository is an in-memory implementation of
// RequestRepository. Thread-safe via RWMutex.
type InMemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]Request
	order    []string
}

// NewInMemoryRequestRepository creates a new in-memory request repository.
func NewInMemoryRequestRepository() *InMemoryRequestRepository {
	return &InMemoryRequestRepository{
		requests: make(map[string]Request),
	}
}

// Add stores a request, generating an id when none is set, and returns
// the id.
func (r *InMemoryRequestRepository) Add(req Request) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if _, exists := r.requests[req.ID]; !exists {
		r.order = append(r.order, req.ID)
	}
	req.SkillsNeeded = append([]string(nil), req.SkillsNeeded...)
	r.requests[req.ID] = req
	return req.ID
}

// GetRequest returns a request by id, or ErrRequestNotFound.
func (r *InMemoryRequestRepository) GetRequest(ctx context.Context, id string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.requests[id]
	if !exists {
		return nil, ErrRequestNotFound
	}
	req.SkillsNeeded = append([]string(nil), req.SkillsNeeded...)
	return &req, nil
}

// ListRequests returns all requests in first-insertion order.
func (r *InMemoryRequestRepository) ListRequests(ctx context.Context) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Request, 0, len(r.order))
	for _, id := range r.order {
		req := r.requests[id]
		req.SkillsNeeded = append([]string(nil), req.SkillsNeeded...)
		result = append(result, req)
	}
	return result, nil
}

// InMemoryMatchStore is an in-memory implementation of MatchStore.
// Thread-safe via Mutex.
type InMemoryMatchStore struct {
	mu      sync.Mutex
	matches map[[2]string]Match
	order   [][2]string
}

// NewInMemoryMatchStore creates a new in-memory match store.
func NewInMemoryMatchStore() *InMemoryMatchStore {
	return &InMemoryMatchStore{
		matches: make(map[[2]string]Match),
	}
}

// UpsertMatch stores a match keyed by (request, creator).
func (s *InMemoryMatchStore) UpsertMatch(ctx context.Context, m Match) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{m.RequestID, m.CreatorID}
	_, exists := s.matches[key]
	if !exists {
		s.order = append(s.order, key)
	}
	s.matches[key] = m
	return !exists, nil
}

// ListMatches returns all matches for a request in first-insertion order.
func (s *InMemoryMatchStore) ListMatches(ctx context.Context, requestID string) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Match
	for _, key := range s.order {
		if key[0] == requestID {
			result = append(result, s.matches[key])
		}
	}
	return result, nil
}
