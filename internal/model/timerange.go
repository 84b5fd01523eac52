package model

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End). A zero Start means "since
// the beginning" and a zero End means "until now".
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func startOfDay(t time.Time) time.Time {
	local := t.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}

// Today returns the range covering the local calendar day of now.
func Today(now time.Time) TimeRange {
	start := startOfDay(now)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// LastDays returns the range covering the n most recent calendar days,
// today included.
func LastDays(now time.Time, n int) TimeRange {
	if n < 1 {
		n = 1
	}
	end := startOfDay(now).AddDate(0, 0, 1)
	return TimeRange{Start: end.AddDate(0, 0, -n), End: end}
}

// AllTime returns the unbounded range.
func AllTime() TimeRange { return TimeRange{} }

// Bounded reports whether both ends are set.
func (r TimeRange) Bounded() bool { return !r.Start.IsZero() && !r.End.IsZero() }

// Duration returns End-Start, or a very large value for open ranges.
func (r TimeRange) Duration() time.Duration {
	if !r.Bounded() {
		return time.Duration(1<<63 - 1)
	}
	return r.End.Sub(r.Start)
}

// DateBounds returns the first and last dates (inclusive) touched by the
// range. Open ends map to the extreme dates "0000-01-01" and "9999-12-31".
func (r TimeRange) DateBounds() (string, string) {
	from, to := "0000-01-01", "9999-12-31"
	if !r.Start.IsZero() {
		from = r.Start.Local().Format(DateLayout)
	}
	if !r.End.IsZero() {
		to = r.End.Add(-time.Nanosecond).Local().Format(DateLayout)
	}
	return from, to
}

// HourBounds returns the first and last (date, hour) pairs inside the range
// as sortable "YYYY-MM-DD HH" keys.
func (r TimeRange) HourBounds() (string, string) {
	from, to := "0000-01-01 00", "9999-12-31 23"
	if !r.Start.IsZero() {
		from = r.Start.Local().Format("2006-01-02 15")
	}
	if !r.End.IsZero() {
		to = r.End.Add(-time.Nanosecond).Local().Format("2006-01-02 15")
	}
	return from, to
}

// HourEdges returns the first and last (date, hour) pairs inside the range
// as separate fields, for filters that compare the columns directly.
func (r TimeRange) HourEdges() (fromDate string, fromHour int, toDate string, toHour int) {
	fromDate, toDate = r.DateBounds()
	fromHour, toHour = 0, 23
	if !r.Start.IsZero() {
		fromHour = r.Start.Local().Hour()
	}
	if !r.End.IsZero() {
		toHour = r.End.Add(-time.Nanosecond).Local().Hour()
	}
	return fromDate, fromHour, toDate, toHour
}

// Dates lists each calendar date in a bounded range, oldest first.
func (r TimeRange) Dates() []string {
	if !r.Bounded() {
		return nil
	}
	var out []string
	for d := startOfDay(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

// ParseRange resolves a named range: today, week (7 days), month (30 days),
// year (365 days) or all.
func ParseRange(name string, now time.Time) (TimeRange, error) {
	switch name {
	case "today", "day":
		return Today(now), nil
	case "week":
		return LastDays(now, 7), nil
	case "month":
		return LastDays(now, 30), nil
	case "year":
		return LastDays(now, 365), nil
	case "all", "":
		return AllTime(), nil
	}
	return TimeRange{}, fmt.Errorf("unknown range %q (want today, week, month, year or all)", name)
}
