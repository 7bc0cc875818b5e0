// Package project provides models and repository access for discoverable
// projects: the units of work ranked in the feed and compared for similarity.
package project

import (
	"errors"
	"time"
)

// Common errors for project operations.
var (
	// ErrProjectNotFound is returned when a project id does not exist.
	ErrProjectNotFound = errors.New("project not found")
)

// Project represents a discoverable unit of work.
// Impressions is a mutable exposure counter; identity is immutable.
type Project struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Title       string    `json:"title"`
	Abstract    string    `json:"abstract,omitempty"`
	Impressions int64     `json:"impressions"`
	CreatedAt   time.Time `json:"created_at"`
}
