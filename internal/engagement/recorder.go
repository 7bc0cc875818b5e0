package engagement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/project"
	"github.com/openreel/crewdeck/internal/reward"
)

// rewardOrigin labels swallowed ledger failures caused by engagement writes.
const rewardOrigin = "engagement"

// Recorder records engagements and grants the project owner an engagement
// bonus for likes and comments. The bonus is a secondary side effect: a
// ledger failure never fails the engagement write.
type Recorder struct {
	engagements Repository
	projects    project.Repository
	ledger      *reward.Ledger
	logger      *slog.Logger
}

// NewRecorder creates an engagement recorder.
func NewRecorder(engagements Repository, projects project.Repository, ledger *reward.Ledger, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		engagements: engagements,
		projects:    projects,
		ledger:      ledger,
		logger:      logger,
	}
}

// Record stores the engagement, ignoring duplicates per (project, creator),
// and rewards the project owner when the reaction is a like or comment.
// Reports whether a new row was inserted.
func (r *Recorder) Record(ctx context.Context, e Engagement) (bool, error) {
	inserted, err := r.engagements.Insert(ctx, e)
	if err != nil {
		return false, fmt.Errorf("failed to insert engagement: %w", err)
	}
	if !inserted {
		r.logger.Debug("duplicate engagement ignored",
			"project_id", e.ProjectID,
			"creator_id", e.CreatorID)
		return false, nil
	}

	if e.Reaction == ReactionLike || e.Reaction == ReactionComment {
		proj, err := r.projects.GetProject(ctx, e.ProjectID)
		if err != nil {
			r.logger.Error("failed to load project for engagement bonus",
				"project_id", e.ProjectID,
				"error", err)
			return true, nil
		}
		r.ledger.GrantSoft(ctx, proj.CreatorID, reward.ReasonEngagement, reward.EngagementValue, rewardOrigin)
	}

	return true, nil
}
