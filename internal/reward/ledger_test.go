package reward

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/openreel/crewdeck/internal/creator"
)

// failingStore always fails appends, for exercising failure paths.
type failingStore struct{}

func (failingStore) AppendEntry(ctx context.Context, creatorID, reason string, value float64) (float64, error) {
	return 0, errors.New("ledger unavailable")
}

func (failingStore) ListEntries(ctx context.Context, creatorID string) ([]Entry, error) {
	return nil, errors.New("ledger unavailable")
}

func newTestLedger(t *testing.T, store Store) (*Ledger, *creator.InMemoryRepository) {
	t.Helper()
	creators := creator.NewInMemoryRepository()
	ledger, err := NewLedger(store, creators, defaultLevels(), nil, nil)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	return ledger, creators
}

func TestNewLedgerRejectsBadThresholds(t *testing.T) {
	_, err := NewLedger(NewInMemoryStore(), creator.NewInMemoryRepository(), Levels{1, 2, 3}, nil, nil)
	if !errors.Is(err, ErrInvalidThresholds) {
		t.Errorf("expected ErrInvalidThresholds, got %v", err)
	}
}

func TestGrantFreshCreator(t *testing.T) {
	ledger, creators := newTestLedger(t, NewInMemoryStore())
	id := creators.Add(creator.Creator{DisplayName: "ada"})

	res, err := ledger.Grant(context.Background(), id, ReasonRankBoost, 120)
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if math.Abs(res.Points-120) > 1e-9 {
		t.Errorf("Points = %v, want 120", res.Points)
	}
	if res.Level != 2 {
		t.Errorf("Level = %d, want 2", res.Level)
	}

	c, err := creators.GetCreator(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCreator failed: %v", err)
	}
	if c.Points != 120 || c.Level != 2 {
		t.Errorf("creator record = (%v, %d), want (120, 2)", c.Points, c.Level)
	}
}

func TestGrantsStack(t *testing.T) {
	ledger, creators := newTestLedger(t, NewInMemoryStore())
	id := creators.Add(creator.Creator{DisplayName: "bo"})

	// Same reason twice: no dedup, both entries count.
	if _, err := ledger.Grant(context.Background(), id, ReasonCollabBonus, CollabBonusValue); err != nil {
		t.Fatalf("first Grant failed: %v", err)
	}
	res, err := ledger.Grant(context.Background(), id, ReasonCollabBonus, CollabBonusValue)
	if err != nil {
		t.Fatalf("second Grant failed: %v", err)
	}
	if math.Abs(res.Points-2*CollabBonusValue) > 1e-9 {
		t.Errorf("Points = %v, want %v", res.Points, 2*CollabBonusValue)
	}
}

func TestGrantTotalIsLedgerSum(t *testing.T) {
	store := NewInMemoryStore()
	ledger, creators := newTestLedger(t, store)
	id := creators.Add(creator.Creator{DisplayName: "cy"})

	values := []float64{10, 5, 1, 300}
	var want float64
	for _, v := range values {
		want += v
		if _, err := ledger.Grant(context.Background(), id, ReasonEngagement, v); err != nil {
			t.Fatalf("Grant failed: %v", err)
		}
	}

	entries, err := store.ListEntries(context.Background(), id)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != len(values) {
		t.Fatalf("entries = %d, want %d", len(entries), len(values))
	}

	res, err := ledger.Grant(context.Background(), id, ReasonEngagement, 0)
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if math.Abs(res.Points-want) > 1e-9 {
		t.Errorf("Points = %v, want ledger sum %v", res.Points, want)
	}
}

func TestGrantEmptyCreatorID(t *testing.T) {
	ledger, _ := newTestLedger(t, NewInMemoryStore())
	_, err := ledger.Grant(context.Background(), "", ReasonRankBoost, 10)
	if !errors.Is(err, ErrEmptyCreatorID) {
		t.Errorf("expected ErrEmptyCreatorID, got %v", err)
	}
}

func TestGrantPropagatesStoreError(t *testing.T) {
	ledger, _ := newTestLedger(t, failingStore{})
	_, err := ledger.Grant(context.Background(), "some-id", ReasonRankBoost, 10)
	if err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestGrantSoftSwallowsFailure(t *testing.T) {
	ledger, _ := newTestLedger(t, failingStore{})
	ok := ledger.GrantSoft(context.Background(), "some-id", ReasonCollabBonus, 5, "collab_matching")
	if ok {
		t.Error("GrantSoft = true, want false on store failure")
	}
}

func TestGrantSoftSucceeds(t *testing.T) {
	ledger, creators := newTestLedger(t, NewInMemoryStore())
	id := creators.Add(creator.Creator{DisplayName: "dee"})

	if ok := ledger.GrantSoft(context.Background(), id, ReasonEngagement, 1, "engagement"); !ok {
		t.Error("GrantSoft = false, want true")
	}

	c, err := creators.GetCreator(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCreator failed: %v", err)
	}
	if c.Points != 1 {
		t.Errorf("Points = %v, want 1", c.Points)
	}
}
