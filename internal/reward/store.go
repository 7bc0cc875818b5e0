package reward

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists ledger entries.
type Store interface {
	// AppendEntry appends a grant to the ledger and returns the creator's
	// new point total, computed as the sum of all historical entries.
	AppendEntry(ctx context.Context, creatorID, reason string, value float64) (float64, error)

	// ListEntries returns all entries for a creator, oldest first.
	ListEntries(ctx context.Context, creatorID string) ([]Entry, error)
}

// InMemoryStore is an in-memory implementation of Store.
// Used for testing and development. Thread-safe via Mutex.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewInMemoryStore creates a new in-memory ledger store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AppendEntry appends a grant and returns the creator's new total.
func (s *InMemoryStore) AppendEntry(ctx context.Context, creatorID, reason string, value float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		ID:        uuid.New().String(),
		CreatorID: creatorID,
		Reason:    reason,
		Value:     value,
		AwardedAt: time.Now().UTC(),
	})

	var total float64
	for _, e := range s.entries {
		if e.CreatorID == creatorID {
			total += e.Value
		}
	}
	return total, nil
}

// ListEntries returns all entries for a creator, oldest first.
func (s *InMemoryStore) ListEntries(ctx context.Context, creatorID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Entry
	for _, e := range s.entries {
		if e.CreatorID == creatorID {
			result = append(result, e)
		}
	}
	return result, nil
}
