// Package creator provides models and repository access for platform
// creators: the people who own projects, react to them, and get matched
// to collaboration requests.
package creator

import (
	"errors"
	"time"
)

// Common errors for creator operations.
var (
	// ErrCreatorNotFound is returned when a creator id does not exist.
	ErrCreatorNotFound = errors.New("creator not found")
)

// Availability tags for collaboration matching.
const (
	AvailabilityOpen     = "open"
	AvailabilityBusy     = "busy"
	AvailabilityInactive = "inactive"
)

// Creator represents a platform participant.
// Points and Level are derived state owned by the reward ledger; nothing
// else may write them.
type Creator struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Skills       []string  `json:"skills,omitempty"`
	Location     string    `json:"location,omitempty"`
	Availability string    `json:"availability,omitempty"`
	Points       float64   `json:"points"`
	Level        int       `json:"level"`
	CreatedAt    time.Time `json:"created_at"`
}
