package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openreel/crewdeck/internal/reward"
	"github.com/openreel/crewdeck/internal/tracing"
)

// RewardStore implements reward.Store using PostgreSQL. The ledger table
// is append-only; totals are always derived by summing entries.
type RewardStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRewardStore creates a new RewardStore.
func NewRewardStore(db *sql.DB, logger *slog.Logger) *RewardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardStore{
		db:     db,
		logger: logger,
	}
}

// AppendEntry appends a ledger entry and returns the creator's new total,
// computed inside the same transaction so concurrent grants never observe
// a stale sum.
func (s *RewardStore) AppendEntry(ctx context.Context, creatorID, reason string, value float64) (total float64, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creator_rewards", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.logger.Warn("failed to rollback reward transaction", "error", rbErr)
		}
	}()

	insertQuery := `
		INSERT INTO creator_rewards (creator_id, reason, value)
		VALUES ($1, $2, $3)
	`
	if _, err = tx.ExecContext(ctx, insertQuery, creatorID, reason, value); err != nil {
		return 0, fmt.Errorf("failed to append reward entry: %w", err)
	}

	sumQuery := `SELECT COALESCE(SUM(value), 0) FROM creator_rewards WHERE creator_id = $1`
	if err = tx.QueryRowContext(ctx, sumQuery, creatorID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum reward entries: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reward transaction: %w", err)
	}
	return total, nil
}

// ListEntries returns a creator's ledger entries oldest first.
func (s *RewardStore) ListEntries(ctx context.Context, creatorID string) (entries []reward.Entry, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "creator_rewards", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, creator_id, reason, value, created_at
		FROM creator_rewards
		WHERE creator_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward entries for %s: %w", creatorID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e reward.Entry
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.Reason, &e.Value, &e.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reward entries: %w", err)
	}
	return entries, nil
}
