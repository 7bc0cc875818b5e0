package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/openreel/crewdeck/internal/collab"
	"github.com/openreel/crewdeck/internal/creator"
	"github.com/openreel/crewdeck/internal/reward"
	"github.com/openreel/crewdeck/internal/tracing"
)

// Score composition. Skill overlap dominates; a location match only breaks
// near-ties.
const (
	SkillWeight        = 2
	LocationMatchScore = 1
)

// rewardOrigin labels swallowed ledger failures caused by matching runs.
const rewardOrigin = "collab_matching"

// Config configures the matching engine.
type Config struct {
	// Logger for run activity.
	Logger *slog.Logger
	// Now supplies the current time; defaults to time.Now. Tests override it.
	Now func() time.Time
}

// Engine scores every creator against a collaboration request and persists
// one match row per creator. Stateless between runs; all collaborators are
// injected.
type Engine struct {
	config   Config
	requests collab.RequestRepository
	creators creator.Repository
	matches  collab.MatchStore
	ledger   *reward.Ledger
}

// NewEngine creates a matching engine.
func NewEngine(
	config Config,
	requests collab.RequestRepository,
	creators creator.Repository,
	matches collab.MatchStore,
	ledger *reward.Ledger,
) *Engine {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Engine{
		config:   config,
		requests: requests,
		creators: creators,
		matches:  matches,
		ledger:   ledger,
	}
}

// Match scores every creator against the request, upserts the match rows,
// and returns them ordered best-first. A missing request yields an empty
// result and no error. Each upserted match grants the creator a
// collaboration bonus; ledger failures are soft.
func (e *Engine) Match(ctx context.Context, requestID string) (result []collab.Match, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "matching.match")
	defer func() { endSpan(err) }()

	e.config.Logger.Info("running matching engine", "request_id", requestID)

	request, err := e.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, collab.ErrRequestNotFound) {
			e.config.Logger.Warn("no collab request found", "request_id", requestID)
			return []collab.Match{}, nil
		}
		return nil, fmt.Errorf("failed to get collab request %s: %w", requestID, err)
	}

	creators, err := e.creators.ListCreators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}

	computedAt := e.config.Now().UTC()
	matches := make([]collab.Match, 0, len(creators))
	for _, c := range creators {
		skillScore := Overlap(request.SkillsNeeded, c.Skills)
		locationScore := 0
		if request.LocationPref == c.Location {
			locationScore = LocationMatchScore
		}

		m := collab.Match{
			RequestID:  requestID,
			CreatorID:  c.ID,
			Score:      skillScore*SkillWeight + locationScore,
			ComputedAt: computedAt,
		}
		if _, err := e.matches.UpsertMatch(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to upsert match for creator %s: %w", c.ID, err)
		}
		matches = append(matches, m)

		if e.ledger != nil {
			e.ledger.GrantSoft(ctx, c.ID, reward.ReasonCollabBonus, reward.CollabBonusValue, rewardOrigin)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CreatorID < matches[j].CreatorID
	})

	e.config.Logger.Info("matching engine completed",
		"request_id", requestID,
		"creators_scored", len(matches))
	return matches, nil
}
