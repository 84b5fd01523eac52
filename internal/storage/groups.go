package storage

import (
	"context"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// SetAppGroup assigns app to a group. GroupUnassigned removes the
// assignment.
func (s *Store) SetAppGroup(ctx context.Context, app string, group model.AppGroup) error {
	if _, err := model.ParseAppGroup(string(group)); err != nil {
		return wrap("set app group", err)
	}
	if group == model.GroupUnassigned {
		_, err := s.db.ExecContext(ctx, `DELETE FROM app_groups WHERE app = ?`, app)
		return wrap("set app group", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_groups (app, grp) VALUES (?, ?)
		ON CONFLICT(app) DO UPDATE SET grp = excluded.grp`, app, string(group))
	return wrap("set app group", err)
}

// AppGroups returns every explicit assignment keyed by app.
func (s *Store) AppGroups(ctx context.Context) (map[string]model.AppGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT app, grp FROM app_groups`)
	if err != nil {
		return nil, wrap("app groups", err)
	}
	defer rows.Close()

	out := make(map[string]model.AppGroup)
	for rows.Next() {
		var app, grp string
		if err := rows.Scan(&app, &grp); err != nil {
			return nil, wrap("app groups", err)
		}
		out[app] = model.AppGroup(grp)
	}
	return out, wrap("app groups", rows.Err())
}

// GroupedUsage sums app usage per group over a range. Every group is
// returned, in AppGroups order, zero-filled when no app falls in it.
func (s *Store) GroupedUsage(ctx context.Context, r model.TimeRange) ([]GroupUsage, error) {
	from, to := r.DateBounds()
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(g.grp, ?), COUNT(DISTINCT u.app), SUM(u.keys), SUM(u.clicks),
			SUM(u.scrolls), SUM(u.distance_px), SUM(u.foreground_seconds)
		FROM app_usage u LEFT JOIN app_groups g ON g.app = u.app
		WHERE u.date BETWEEN ? AND ?
		GROUP BY 1`, string(model.GroupUnassigned), from, to)
	if err != nil {
		return nil, wrap("grouped usage", err)
	}
	defer rows.Close()

	found := make(map[model.AppGroup]GroupUsage)
	for rows.Next() {
		var grp string
		var u GroupUsage
		if err := rows.Scan(&grp, &u.Apps, &u.Keys, &u.Clicks, &u.Scrolls, &u.DistancePx, &u.ForegroundSeconds); err != nil {
			return nil, wrap("grouped usage", err)
		}
		u.Group = model.AppGroup(grp)
		found[u.Group] = u
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("grouped usage", err)
	}

	out := make([]GroupUsage, 0, len(model.AppGroups))
	for _, g := range model.AppGroups {
		u := found[g]
		u.Group = g
		out = append(out, u)
	}
	return out, nil
}
