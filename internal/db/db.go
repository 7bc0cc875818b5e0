// Package db provides PostgreSQL connection handling for crewdeck.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Pool defaults. The engines run one batch at a time, so the pool stays
// small.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// ErrMissingDatabaseURL is returned when Open is called without a URL.
var ErrMissingDatabaseURL = errors.New("database URL is required")

// Open connects to PostgreSQL, applies pool settings, and verifies the
// connection with a ping before returning it.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(DefaultMaxOpenConns)
	conn.SetMaxIdleConns(DefaultMaxIdleConns)
	conn.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}
