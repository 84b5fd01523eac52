package storage

import (
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// HourlyStats holds one hour's totals.
type HourlyStats struct {
	Hour int
	model.Totals
}

// DayStats holds one day's totals.
type DayStats struct {
	Date string
	model.Totals
}

// AppTime is foreground time of one app over a range.
type AppTime struct {
	App     string
	Seconds float64
}

// PruneResult reports what a retention pass removed.
type PruneResult struct {
	// Horizon is the oldest date kept; empty when nothing was pruned by
	// policy.
	Horizon string
	Rows    map[string]int64
}

// Total returns the number of rows removed across all tables.
func (r PruneResult) Total() int64 {
	var n int64
	for _, v := range r.Rows {
		n += v
	}
	return n
}

// WeekdayAverage is the mean daily activity on one weekday, over the days
// that have data.
type WeekdayAverage struct {
	Weekday    time.Weekday
	Days       int
	Keys       float64
	Clicks     float64
	Scrolls    float64
	DistancePx float64
}

// HourAverage is the mean activity in one hour of the day, over the
// (date, hour) buckets that have data.
type HourAverage struct {
	Hour       int
	Samples    int
	Keys       float64
	Clicks     float64
	Scrolls    float64
	DistancePx float64
}

// GroupUsage sums app usage for one app group.
type GroupUsage struct {
	Group             model.AppGroup
	Apps              int
	Keys              int64
	Clicks            int64
	Scrolls           int64
	DistancePx        float64
	ForegroundSeconds float64
}
