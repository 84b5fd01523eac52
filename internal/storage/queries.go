package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// hourFilter matches buckets whose (date, hour) lies in the range. It
// compares the key columns directly so the date indexes can serve it. Bind
// it with hourArgs.
const hourFilter = `date BETWEEN ? AND ? AND (date > ? OR hour >= ?) AND (date < ? OR hour <= ?)`

func hourArgs(r model.TimeRange) []any {
	fromDate, fromHour, toDate, toHour := r.HourEdges()
	return []any{fromDate, toDate, fromDate, fromHour, toDate, toHour}
}

const totalsColumns = `COALESCE(SUM(keys), 0), COALESCE(SUM(letters), 0), COALESCE(SUM(modifiers), 0),
	COALESCE(SUM(special), 0), COALESCE(SUM(clicks), 0), COALESCE(SUM(scrolls), 0),
	COALESCE(SUM(scroll_steps), 0), COALESCE(SUM(distance_px), 0)`

func scanTotals(row interface{ Scan(...any) error }, t *model.Totals, extra ...any) error {
	dest := append(extra, &t.Keys, &t.Letters, &t.Modifiers, &t.Special,
		&t.Clicks, &t.Scrolls, &t.ScrollSteps, &t.DistancePx)
	return row.Scan(dest...)
}

// KeyCounts returns per-key press counts of a scope over a range.
func (s *Store) KeyCounts(ctx context.Context, r model.TimeRange, scope string) (model.KeyCounter, error) {
	args := append([]any{scope}, hourArgs(r)...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, SUM(count) FROM key_counts
		WHERE scope = ? AND `+hourFilter+`
		GROUP BY key`, args...)
	if err != nil {
		return nil, wrap("key counts", err)
	}
	defer rows.Close()

	out := make(model.KeyCounter)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, wrap("key counts", err)
		}
		out[key] = n
	}
	return out, wrap("key counts", rows.Err())
}

// Totals sums the counters of a scope over a range.
func (s *Store) Totals(ctx context.Context, r model.TimeRange, scope string) (model.Totals, error) {
	var t model.Totals
	args := append([]any{scope}, hourArgs(r)...)
	row := s.db.QueryRowContext(ctx, `SELECT `+totalsColumns+` FROM bucket_totals
		WHERE scope = ? AND `+hourFilter, args...)
	if err := scanTotals(row, &t); err != nil {
		return model.Totals{}, wrap("totals", err)
	}
	return t, nil
}

// HourlyStats returns 24 entries for the date, zero-filled.
func (s *Store) HourlyStats(ctx context.Context, date, scope string) ([]HourlyStats, error) {
	stats := make([]HourlyStats, 24)
	for h := range stats {
		stats[h].Hour = h
	}

	rows, err := s.db.QueryContext(ctx, `SELECT hour, `+totalsColumns+` FROM bucket_totals
		WHERE date = ? AND scope = ? GROUP BY hour`, date, scope)
	if err != nil {
		return nil, wrap("hourly stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour int
		var t model.Totals
		if err := scanTotals(rows, &t, &hour); err != nil {
			return nil, wrap("hourly stats", err)
		}
		if hour >= 0 && hour < 24 {
			stats[hour].Totals = t
		}
	}
	return stats, wrap("hourly stats", rows.Err())
}

// DailyStats returns per-day totals. Bounded ranges get one zero-filled
// entry per date; unbounded ranges list only dates with data.
func (s *Store) DailyStats(ctx context.Context, r model.TimeRange, scope string) ([]DayStats, error) {
	from, to := r.DateBounds()
	rows, err := s.db.QueryContext(ctx, `SELECT date, `+totalsColumns+` FROM bucket_totals
		WHERE scope = ? AND date BETWEEN ? AND ? GROUP BY date ORDER BY date`, scope, from, to)
	if err != nil {
		return nil, wrap("daily stats", err)
	}
	defer rows.Close()

	found := make(map[string]model.Totals)
	var order []string
	for rows.Next() {
		var date string
		var t model.Totals
		if err := scanTotals(rows, &t, &date); err != nil {
			return nil, wrap("daily stats", err)
		}
		found[date] = t
		order = append(order, date)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("daily stats", err)
	}

	if r.Bounded() {
		order = r.Dates()
	}
	out := make([]DayStats, 0, len(order))
	for _, d := range order {
		out = append(out, DayStats{Date: d, Totals: found[d]})
	}
	return out, nil
}

// AppUsage sums usage per app over a range, most foreground time first.
// Date is left empty on the returned records. limit <= 0 returns all.
func (s *Store) AppUsage(ctx context.Context, r model.TimeRange, limit int) ([]model.AppUsageRecord, error) {
	from, to := r.DateBounds()
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT app, SUM(keys), SUM(clicks), SUM(scrolls), SUM(distance_px), SUM(foreground_seconds)
		FROM app_usage WHERE date BETWEEN ? AND ?
		GROUP BY app
		ORDER BY SUM(foreground_seconds) DESC, SUM(keys) DESC, app
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, wrap("app usage", err)
	}
	defer rows.Close()

	var out []model.AppUsageRecord
	for rows.Next() {
		var a model.AppUsageRecord
		if err := rows.Scan(&a.App, &a.Keys, &a.Clicks, &a.Scrolls, &a.DistancePx, &a.ForegroundSeconds); err != nil {
			return nil, wrap("app usage", err)
		}
		out = append(out, a)
	}
	return out, wrap("app usage", rows.Err())
}

// Apps lists every executable seen, alphabetically.
func (s *Store) Apps(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT app FROM app_usage ORDER BY app`)
	if err != nil {
		return nil, wrap("apps", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, wrap("apps", err)
		}
		out = append(out, app)
	}
	return out, wrap("apps", rows.Err())
}

// SpatialSamples returns hourly-tier bins over a range, summed per point.
func (s *Store) SpatialSamples(ctx context.Context, r model.TimeRange, monitor int, scope string, kind model.SampleKind) ([]model.SpatialSample, error) {
	args := append([]any{monitor, scope, string(kind)}, hourArgs(r)...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT x, y, SUM(weight) FROM spatial_samples
		WHERE monitor = ? AND scope = ? AND kind = ? AND `+hourFilter+`
		GROUP BY x, y`, args...)
	if err != nil {
		return nil, wrap("spatial samples", err)
	}
	return scanSamples(rows, monitor, kind, "spatial samples")
}

// SpatialRollup returns the reduced daily tier for one date.
func (s *Store) SpatialRollup(ctx context.Context, date string, monitor int, scope string, kind model.SampleKind) ([]model.SpatialSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT x, y, weight FROM spatial_rollup
		WHERE date = ? AND monitor = ? AND scope = ? AND kind = ?`,
		date, monitor, scope, string(kind))
	if err != nil {
		return nil, wrap("spatial rollup", err)
	}
	return scanSamples(rows, monitor, kind, "spatial rollup")
}

func scanSamples(rows *sql.Rows, monitor int, kind model.SampleKind, op string) ([]model.SpatialSample, error) {
	defer rows.Close()
	var out []model.SpatialSample
	for rows.Next() {
		sm := model.SpatialSample{Monitor: monitor, Kind: kind}
		if err := rows.Scan(&sm.X, &sm.Y, &sm.Weight); err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, sm)
	}
	return out, wrap(op, rows.Err())
}

// FocusSpans returns closed spans overlapping the range, oldest first.
func (s *Store) FocusSpans(ctx context.Context, r model.TimeRange) ([]model.FocusSpan, error) {
	var lo, hi int64 = 0, 1<<63 - 1
	if !r.Start.IsZero() {
		lo = r.Start.UnixMilli()
	}
	if !r.End.IsZero() {
		hi = r.End.UnixMilli()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT app, start_ms, end_ms FROM focus_spans
		WHERE end_ms > ? AND start_ms < ?
		ORDER BY start_ms, id`, lo, hi)
	if err != nil {
		return nil, wrap("focus spans", err)
	}
	defer rows.Close()

	var out []model.FocusSpan
	for rows.Next() {
		var app string
		var start, end int64
		if err := rows.Scan(&app, &start, &end); err != nil {
			return nil, wrap("focus spans", err)
		}
		e := time.UnixMilli(end)
		out = append(out, model.FocusSpan{App: app, Start: time.UnixMilli(start), End: &e})
	}
	return out, wrap("focus spans", rows.Err())
}

// ScreenTime returns foreground seconds per app over a range, longest first.
func (s *Store) ScreenTime(ctx context.Context, r model.TimeRange) ([]AppTime, error) {
	from, to := r.DateBounds()
	rows, err := s.db.QueryContext(ctx, `
		SELECT app, SUM(foreground_seconds) FROM app_usage
		WHERE date BETWEEN ? AND ?
		GROUP BY app HAVING SUM(foreground_seconds) > 0
		ORDER BY SUM(foreground_seconds) DESC, app`, from, to)
	if err != nil {
		return nil, wrap("screen time", err)
	}
	defer rows.Close()

	var out []AppTime
	for rows.Next() {
		var a AppTime
		if err := rows.Scan(&a.App, &a.Seconds); err != nil {
			return nil, wrap("screen time", err)
		}
		out = append(out, a)
	}
	return out, wrap("screen time", rows.Err())
}
