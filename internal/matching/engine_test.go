package matching

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/openreel/crewdeck/internal/collab"
	"github.com/openreel/crewdeck/internal/creator"
	"github.com/openreel/crewdeck/internal/reward"
)

func newTestEngine(t *testing.T) (*Engine, *collab.InMemoryRequestRepository, *creator.InMemoryRepository, *collab.InMemoryMatchStore, *reward.InMemoryStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	requests := collab.NewInMemoryRequestRepository()
	creators := creator.NewInMemoryRepository()
	matches := collab.NewInMemoryMatchStore()
	rewards := reward.NewInMemoryStore()

	ledger, err := reward.NewLedger(rewards, creators, reward.Levels{0, 100, 300, 700, 1500}, logger, nil)
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}

	engine := NewEngine(Config{
		Logger: logger,
		Now:    func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}, requests, creators, matches, ledger)

	return engine, requests, creators, matches, rewards
}

func TestMatchScoresAllCreators(t *testing.T) {
	engine, requests, creators, matches, _ := newTestEngine(t)

	editor := creators.Add(creator.Creator{
		DisplayName: "editor",
		Skills:      []string{"editing", "color"},
		Location:    "Berlin",
	})
	sound := creators.Add(creator.Creator{
		DisplayName: "sound designer",
		Skills:      []string{"Sound"},
		Location:    "Lisbon",
	})
	unrelated := creators.Add(creator.Creator{
		DisplayName: "animator",
		Skills:      []string{"animation"},
		Location:    "Tokyo",
	})

	requestID := requests.Add(collab.Request{
		RequesterID:  "someone",
		RoleNeeded:   "post production",
		SkillsNeeded: []string{"Editing", "Sound"},
		LocationPref: "Berlin",
	})

	got, err := engine.Match(context.Background(), requestID)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d matches, want 3", len(got))
	}

	scores := make(map[string]int, len(got))
	for _, m := range got {
		scores[m.CreatorID] = m.Score
	}
	// editor: 1 skill overlap * 2 + location match = 3.
	if scores[editor] != 3 {
		t.Errorf("editor score = %d, want 3", scores[editor])
	}
	if scores[sound] != 2 {
		t.Errorf("sound score = %d, want 2", scores[sound])
	}
	if scores[unrelated] != 0 {
		t.Errorf("animator score = %d, want 0", scores[unrelated])
	}

	// Result ordered best-first.
	if got[0].CreatorID != editor {
		t.Errorf("top match = %s, want editor %s", got[0].CreatorID, editor)
	}

	stored, err := matches.ListMatches(context.Background(), requestID)
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d matches, want 3", len(stored))
	}
}

func TestMatchMissingRequest(t *testing.T) {
	engine, _, creators, matches, _ := newTestEngine(t)
	creators.Add(creator.Creator{DisplayName: "someone", Skills: []string{"editing"}})

	got, err := engine.Match(context.Background(), "no-such-request")
	if err != nil {
		t.Fatalf("Match() error = %v, want nil for missing request", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d matches, want 0", len(got))
	}

	stored, err := matches.ListMatches(context.Background(), "no-such-request")
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("stored %d matches, want 0", len(stored))
	}
}

func TestMatchGrantsCollabBonus(t *testing.T) {
	engine, requests, creators, _, rewards := newTestEngine(t)
	id := creators.Add(creator.Creator{DisplayName: "editor", Skills: []string{"editing"}})
	requestID := requests.Add(collab.Request{SkillsNeeded: []string{"editing"}})

	if _, err := engine.Match(context.Background(), requestID); err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	entries, err := rewards.ListEntries(context.Background(), id)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d reward entries, want 1", len(entries))
	}
	if entries[0].Reason != reward.ReasonCollabBonus || entries[0].Value != reward.CollabBonusValue {
		t.Errorf("entry = %+v, want %q worth %v", entries[0], reward.ReasonCollabBonus, float64(reward.CollabBonusValue))
	}

	got, err := creators.GetCreator(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCreator() error = %v", err)
	}
	if got.Points != reward.CollabBonusValue {
		t.Errorf("points = %v, want %v", got.Points, float64(reward.CollabBonusValue))
	}
}

func TestMatchRerunOverwritesScores(t *testing.T) {
	engine, requests, creators, matches, _ := newTestEngine(t)
	creators.Add(creator.Creator{DisplayName: "editor", Skills: []string{"editing"}, Location: "Berlin"})
	requestID := requests.Add(collab.Request{SkillsNeeded: []string{"editing"}, LocationPref: "Berlin"})

	if _, err := engine.Match(context.Background(), requestID); err != nil {
		t.Fatalf("first Match() error = %v", err)
	}
	if _, err := engine.Match(context.Background(), requestID); err != nil {
		t.Fatalf("second Match() error = %v", err)
	}

	stored, err := matches.ListMatches(context.Background(), requestID)
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d matches after rerun, want 1", len(stored))
	}
	if stored[0].Score != 3 {
		t.Errorf("score = %d, want 3", stored[0].Score)
	}
}
