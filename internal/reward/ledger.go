package reward

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/creator"
)

// GrantResult is the refreshed derived state after a grant.
type GrantResult struct {
	CreatorID string  `json:"creator_id"`
	Points    float64 `json:"points"`
	Level     int     `json:"level"`
}

// Ledger appends point grants and keeps the derived (points, level) pair on
// the creator record consistent with the ledger's sum.
type Ledger struct {
	store    Store
	creators creator.Repository
	levels   Levels
	logger   *slog.Logger
	metrics  *Metrics
}

// NewLedger creates a reward ledger. A nil metrics instance disables
// metric recording; levels must be a valid five-entry threshold table.
func NewLedger(store Store, creators creator.Repository, levels Levels, logger *slog.Logger, metrics *Metrics) (*Ledger, error) {
	if err := levels.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:    store,
		creators: creators,
		levels:   levels,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Grant appends an entry unconditionally, recomputes the creator's total
// from the full ledger, derives the level, and writes both back onto the
// creator record. Errors propagate to the caller; secondary side-effect
// call sites should use GrantSoft instead.
func (l *Ledger) Grant(ctx context.Context, creatorID, reason string, value float64) (*GrantResult, error) {
	if creatorID == "" {
		return nil, ErrEmptyCreatorID
	}

	total, err := l.store.AppendEntry(ctx, creatorID, reason, value)
	if err != nil {
		return nil, fmt.Errorf("failed to append reward entry: %w", err)
	}

	level := l.levels.LevelFor(total)
	if err := l.creators.UpdateCreatorStats(ctx, creatorID, total, level); err != nil {
		return nil, fmt.Errorf("failed to update creator stats: %w", err)
	}

	if l.metrics != nil {
		l.metrics.IncGrants(reason, value)
	}

	l.logger.Debug("reward granted",
		"creator_id", creatorID,
		"reason", reason,
		"value", value,
		"points", total,
		"level", level)

	return &GrantResult{CreatorID: creatorID, Points: total, Level: level}, nil
}

// GrantSoft performs a grant on behalf of a primary operation (engagement
// recorded, match written, rank persisted). A ledger failure is logged and
// counted but never returned, so the primary write is never lost to reward
// bookkeeping. Reports whether the grant succeeded.
func (l *Ledger) GrantSoft(ctx context.Context, creatorID, reason string, value float64, origin string) bool {
	if _, err := l.Grant(ctx, creatorID, reason, value); err != nil {
		l.logger.Error("reward grant failed; continuing without it",
			"creator_id", creatorID,
			"reason", reason,
			"origin", origin,
			"error", err)
		if l.metrics != nil {
			l.metrics.IncSoftFailures(origin)
		}
		return false
	}
	return true
}

// Levels returns the configured threshold table.
func (l *Ledger) Levels() Levels {
	return l.levels
}
