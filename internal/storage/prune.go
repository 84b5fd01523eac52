package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Prune deletes every row dated before the policy horizon. The Forever
// policy is a no-op.
func (s *Store) Prune(ctx context.Context, policy model.RetentionPolicy, now time.Time) (PruneResult, error) {
	res := PruneResult{Rows: make(map[string]int64)}
	if policy.KeepsForever() {
		return res, nil
	}
	res.Horizon = policy.Horizon(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, wrap("prune", err)
	}
	defer tx.Rollback()

	for _, table := range prunable {
		r, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE date < ?`, table), res.Horizon)
		if err != nil {
			return res, wrap("prune", fmt.Errorf("%s: %w", table, err))
		}
		n, _ := r.RowsAffected()
		res.Rows[table] = n
	}

	if err := tx.Commit(); err != nil {
		return res, wrap("prune", err)
	}
	return res, nil
}

// OldestDate returns the earliest bucket date stored, or "" when empty.
func (s *Store) OldestDate(ctx context.Context) (string, error) {
	var date string
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MIN(date), '') FROM bucket_totals`).Scan(&date)
	if err != nil {
		return "", wrap("oldest date", err)
	}
	return date, nil
}
