// Package postgres implements the repository and store contracts on
// PostgreSQL. One type per aggregate, all sharing a *sql.DB pool from
// internal/db. Schema lives in migrations/.
package postgres
