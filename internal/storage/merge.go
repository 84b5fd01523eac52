package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Merge adds a delta to the store in one transaction. A delta whose ID has
// already been applied is ignored, so retrying after an ambiguous failure
// never double counts.
func (s *Store) Merge(ctx context.Context, d *model.Delta) error {
	if d == nil || d.ID == "" {
		return wrap("merge", fmt.Errorf("delta without id"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("merge", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO applied_deltas (id, date) VALUES (?, ?)`,
		d.ID, d.CreatedAt.Local().Format(model.DateLayout))
	if err != nil {
		return wrap("merge", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	steps := []func(context.Context, *sql.Tx, *model.Delta) error{
		mergeKeyCounts,
		mergeTotals,
		mergeSamples,
		mergeRollup,
		mergeApps,
		mergeSpans,
	}
	for _, step := range steps {
		if err := step(ctx, tx, d); err != nil {
			return wrap("merge", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("merge", err)
	}
	return nil
}

func mergeKeyCounts(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO key_counts (date, hour, scope, key, count) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, hour, scope, key) DO UPDATE SET count = count + excluded.count`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for b, counter := range d.Keys {
		for key, n := range counter {
			if _, err := stmt.ExecContext(ctx, b.Date, b.Hour, b.Scope, key, n); err != nil {
				return fmt.Errorf("key_counts: %w", err)
			}
		}
	}
	return nil
}

func mergeTotals(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bucket_totals (date, hour, scope, keys, letters, modifiers, special,
			clicks, scrolls, scroll_steps, distance_px)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, hour, scope) DO UPDATE SET
			keys = keys + excluded.keys,
			letters = letters + excluded.letters,
			modifiers = modifiers + excluded.modifiers,
			special = special + excluded.special,
			clicks = clicks + excluded.clicks,
			scrolls = scrolls + excluded.scrolls,
			scroll_steps = scroll_steps + excluded.scroll_steps,
			distance_px = distance_px + excluded.distance_px`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for b, t := range d.Totals {
		if _, err := stmt.ExecContext(ctx, b.Date, b.Hour, b.Scope, t.Keys, t.Letters, t.Modifiers,
			t.Special, t.Clicks, t.Scrolls, t.ScrollSteps, t.DistancePx); err != nil {
			return fmt.Errorf("bucket_totals: %w", err)
		}
	}
	return nil
}

func mergeSamples(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO spatial_samples (date, hour, scope, monitor, kind, x, y, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, hour, scope, monitor, kind, x, y) DO UPDATE SET weight = weight + excluded.weight`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, w := range d.Samples {
		if _, err := stmt.ExecContext(ctx, k.Bucket.Date, k.Bucket.Hour, k.Bucket.Scope,
			k.Monitor, string(k.Kind), k.X, k.Y, w); err != nil {
			return fmt.Errorf("spatial_samples: %w", err)
		}
	}
	return nil
}

func mergeRollup(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO spatial_rollup (date, scope, monitor, kind, x, y, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, scope, monitor, kind, x, y) DO UPDATE SET weight = weight + excluded.weight`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, w := range d.Rollup {
		if _, err := stmt.ExecContext(ctx, k.Date, k.Scope, k.Monitor, string(k.Kind), k.X, k.Y, w); err != nil {
			return fmt.Errorf("spatial_rollup: %w", err)
		}
	}
	return nil
}

func mergeApps(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO app_usage (date, app, keys, clicks, scrolls, distance_px, foreground_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, app) DO UPDATE SET
			keys = keys + excluded.keys,
			clicks = clicks + excluded.clicks,
			scrolls = scrolls + excluded.scrolls,
			distance_px = distance_px + excluded.distance_px,
			foreground_seconds = foreground_seconds + excluded.foreground_seconds`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, r := range d.Apps {
		if _, err := stmt.ExecContext(ctx, k.Date, k.App, r.Keys, r.Clicks, r.Scrolls,
			r.DistancePx, r.ForegroundSeconds); err != nil {
			return fmt.Errorf("app_usage: %w", err)
		}
	}
	return nil
}

func mergeSpans(ctx context.Context, tx *sql.Tx, d *model.Delta) error {
	if len(d.Spans) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO focus_spans (app, date, start_ms, end_ms) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, span := range d.Spans {
		if span.End == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, span.App, span.Start.Local().Format(model.DateLayout),
			span.Start.UnixMilli(), span.End.UnixMilli()); err != nil {
			return fmt.Errorf("focus_spans: %w", err)
		}
	}
	return nil
}
