// Package health provides dependency probes and the aggregate health endpoint.
package health

import (
	"context"
	"database/sql"
	"fmt"
)

// DBChecker probes a SQL database connection.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a database probe over an open connection pool.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database.
func (c *DBChecker) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
