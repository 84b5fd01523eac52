package storage

import (
	"context"
	"time"
)

// DayOfWeekAverages returns the mean daily totals of a scope per weekday,
// Sunday first. Each date is summed before averaging, and only dates with
// data count.
func (s *Store) DayOfWeekAverages(ctx context.Context, scope string) ([]WeekdayAverage, error) {
	out := make([]WeekdayAverage, 7)
	for d := range out {
		out[d].Weekday = time.Weekday(d)
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH daily AS (
			SELECT date, SUM(keys) AS keys, SUM(clicks) AS clicks,
				SUM(scrolls) AS scrolls, SUM(distance_px) AS distance_px
			FROM bucket_totals WHERE scope = ?
			GROUP BY date
		)
		SELECT CAST(strftime('%w', date) AS INTEGER) AS dow, COUNT(*),
			AVG(keys), AVG(clicks), AVG(scrolls), AVG(distance_px)
		FROM daily GROUP BY dow`, scope)
	if err != nil {
		return nil, wrap("day of week averages", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dow int
		var a WeekdayAverage
		if err := rows.Scan(&dow, &a.Days, &a.Keys, &a.Clicks, &a.Scrolls, &a.DistancePx); err != nil {
			return nil, wrap("day of week averages", err)
		}
		if dow >= 0 && dow < 7 {
			a.Weekday = time.Weekday(dow)
			out[dow] = a
		}
	}
	return out, wrap("day of week averages", rows.Err())
}

// HourOfDayAverages returns the mean totals of a scope per hour of the day.
// Each (date, hour) is summed before averaging, and only buckets with data
// count.
func (s *Store) HourOfDayAverages(ctx context.Context, scope string) ([]HourAverage, error) {
	out := make([]HourAverage, 24)
	for h := range out {
		out[h].Hour = h
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH hourly AS (
			SELECT date, hour, SUM(keys) AS keys, SUM(clicks) AS clicks,
				SUM(scrolls) AS scrolls, SUM(distance_px) AS distance_px
			FROM bucket_totals WHERE scope = ?
			GROUP BY date, hour
		)
		SELECT hour, COUNT(*), AVG(keys), AVG(clicks), AVG(scrolls), AVG(distance_px)
		FROM hourly GROUP BY hour`, scope)
	if err != nil {
		return nil, wrap("hour of day averages", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a HourAverage
		if err := rows.Scan(&a.Hour, &a.Samples, &a.Keys, &a.Clicks, &a.Scrolls, &a.DistancePx); err != nil {
			return nil, wrap("hour of day averages", err)
		}
		if a.Hour >= 0 && a.Hour < 24 {
			out[a.Hour] = a
		}
	}
	return out, wrap("hour of day averages", rows.Err())
}
