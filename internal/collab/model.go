package collab

import (
	"errors"
	"time"
)

// ErrRequestNotFound is returned when a collaboration request doesn't exist.
var ErrRequestNotFound = errors.New("collab request not found")

// Request is an open call for collaborators on a project.
type Request struct {
	ID           string    `json:"id"`
	RequesterID  string    `json:"requester_id"`
	ProjectID    string    `json:"project_id"`
	RoleNeeded   string    `json:"role_needed"`
	SkillsNeeded []string  `json:"skills_needed"`
	LocationPref string    `json:"location_pref"`
	CreatedAt    time.Time `json:"created_at"`
}

// Match is one creator scored against one request. Rewritten wholesale every
// time the matching engine runs for the request.
type Match struct {
	RequestID  string    `json:"request_id"`
	CreatorID  string    `json:"creator_id"`
	Score      int       `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}
