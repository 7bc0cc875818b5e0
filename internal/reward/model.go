// Package reward provides the append-only point-grant ledger and level
// derivation for creators. An account's point total is always the sum of
// its ledger entries; the level is a pure function of that total.
package reward

import (
	"errors"
	"time"
)

// Grant reasons recorded in the ledger. Repeated grants with the same
// reason legitimately stack; there is no idempotency key.
const (
	ReasonRankBoost   = "FairRank Boost"
	ReasonCollabBonus = "Collaboration Bonus"
	ReasonEngagement  = "Engagement Bonus"
)

// Default grant values for the built-in reasons.
const (
	RankBoostValue   = 10
	CollabBonusValue = 5
	EngagementValue  = 1
)

// Validation errors.
var (
	ErrInvalidThresholds = errors.New("level thresholds must be five strictly ascending values")
	ErrEmptyCreatorID    = errors.New("creator id is required")
)

// Entry is one append-only point grant in the ledger.
type Entry struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Reason    string    `json:"reason"`
	Value     float64   `json:"value"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Levels is the ascending point-threshold table mapping totals to levels
// 1 through 5. Totals below the lowest threshold map to level 1; totals at
// or above the highest map to level 5.
type Levels []int

// Validate checks that the table has exactly five strictly ascending entries.
func (l Levels) Validate() error {
	if len(l) != 5 {
		return ErrInvalidThresholds
	}
	for i := 1; i < len(l); i++ {
		if l[i] <= l[i-1] {
			return ErrInvalidThresholds
		}
	}
	return nil
}

// LevelFor derives the level for a point total. The result is the highest
// level whose threshold the total meets, and never less than 1.
func (l Levels) LevelFor(points float64) int {
	level := 1
	for i, threshold := range l {
		if points >= float64(threshold) {
			level = i + 1
		}
	}
	return level
}
