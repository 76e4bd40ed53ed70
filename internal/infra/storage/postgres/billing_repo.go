package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// billingWindow is the length of one billing period per client.
const billingWindow = 365 * 24 * time.Hour

// BillingRepo maintains the rolling per-client billing counters: one active
// period per client at a time, a fresh period opened once the active one
// ages past the billing window.
type BillingRepo struct {
	db *DB
}

// NewBillingRepo creates a billing repository.
func NewBillingRepo(db *DB) *BillingRepo {
	return &BillingRepo{db: db}
}

// Increment counts one processed item against the client's active billing
// period, opening a new period if none is active.
func (r *BillingRepo) Increment(ctx context.Context, clientID string, now time.Time) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin billing transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var periodID int64
	err = tx.GetContext(ctx, &periodID,
		`SELECT id FROM billing_periods
		 WHERE client_id = $1 AND started_at > $2
		 ORDER BY started_at DESC LIMIT 1
		 FOR UPDATE`,
		clientID, now.Add(-billingWindow))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO billing_periods (client_id, started_at, item_count)
			 VALUES ($1, $2, 1)`,
			clientID, now)
		if err != nil {
			return fmt.Errorf("failed to open billing period for %s: %w", clientID, err)
		}
	case err != nil:
		return fmt.Errorf("failed to find billing period for %s: %w", clientID, err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE billing_periods SET item_count = item_count + 1 WHERE id = $1`,
			periodID)
		if err != nil {
			return fmt.Errorf("failed to increment billing period %d: %w", periodID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit billing transaction: %w", err)
	}
	return nil
}

// ActiveCount returns the item count of the client's active billing period,
// or 0 when no period is active.
func (r *BillingRepo) ActiveCount(ctx context.Context, clientID string, now time.Time) (int64, error) {
	var count int64
	err := r.db.conn.GetContext(ctx, &count,
		`SELECT item_count FROM billing_periods
		 WHERE client_id = $1 AND started_at > $2
		 ORDER BY started_at DESC LIMIT 1`,
		clientID, now.Add(-billingWindow))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read billing period for %s: %w", clientID, err)
	}
	return count, nil
}
