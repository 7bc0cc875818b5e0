// Package engagement provides models, repository access, and recording for
// weighted reaction events tying creators to projects.
package engagement

import (
	"time"
)

// Reaction kinds. Likes and comments reward the project owner; views do not.
const (
	ReactionLike    = "like"
	ReactionComment = "comment"
	ReactionShare   = "share"
	ReactionView    = "view"
)

// Engagement is one weighted reaction by a creator on a project.
// At most one row exists per (project, creator) pair; duplicate inserts
// are ignored, not merged.
type Engagement struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CreatorID string    `json:"creator_id"`
	Reaction  string    `json:"reaction"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}
