package model

import (
	"fmt"
	"strings"
	"time"
)

// ScopeGlobal is the aggregation scope covering every application.
const ScopeGlobal = "global"

// appScopePrefix marks app scopes that would otherwise read as ScopeGlobal.
const appScopePrefix = "app:"

// AppScope returns the aggregation scope of an executable. It never equals
// ScopeGlobal, and distinct apps get distinct scopes.
func AppScope(app string) string {
	if app == ScopeGlobal || strings.HasPrefix(app, appScopePrefix) {
		return appScopePrefix + app
	}
	return app
}

// DateLayout is the bucket date format used everywhere a date is persisted.
const DateLayout = "2006-01-02"

// KeyCounter maps a logical key name to its press count.
type KeyCounter map[string]int64

// Add merges other into c.
func (c KeyCounter) Add(other KeyCounter) {
	for k, v := range other {
		c[k] += v
	}
}

// Total returns the sum of all counts.
func (c KeyCounter) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

// AppGroup is a user-assigned application category.
type AppGroup string

const (
	GroupProductivity AppGroup = "productivity"
	GroupOther        AppGroup = "other"
	GroupUnassigned   AppGroup = "unassigned"
)

// AppGroups lists the groups in display order.
var AppGroups = []AppGroup{GroupProductivity, GroupOther, GroupUnassigned}

// ParseAppGroup validates a group name.
func ParseAppGroup(name string) (AppGroup, error) {
	for _, g := range AppGroups {
		if string(g) == name {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGroup, name)
}

// SampleKind distinguishes click density from movement density.
type SampleKind string

const (
	SampleClick SampleKind = "click"
	SampleMove  SampleKind = "move"
)

// SpatialSample is one weighted point on a monitor.
type SpatialSample struct {
	X       int
	Y       int
	Monitor int
	Weight  float64
	Kind    SampleKind
}

// BucketKey identifies an hourly aggregation bucket.
type BucketKey struct {
	Date  string
	Hour  int
	Scope string
}

// BucketFor returns the bucket for a timestamp in local time.
func BucketFor(at time.Time, scope string) BucketKey {
	local := at.Local()
	return BucketKey{Date: local.Format(DateLayout), Hour: local.Hour(), Scope: scope}
}

// AppUsageRecord is the per-day usage summary of one executable.
type AppUsageRecord struct {
	Date              string
	App               string
	Keys              int64
	Clicks            int64
	Scrolls           int64
	DistancePx        float64
	ForegroundSeconds float64
}

// Totals are the summed counters of a scope over a range.
type Totals struct {
	Keys        int64
	Letters     int64
	Modifiers   int64
	Special     int64
	Clicks      int64
	Scrolls     int64
	ScrollSteps float64
	DistancePx  float64
}

// Add merges other into t.
func (t *Totals) Add(other Totals) {
	t.Keys += other.Keys
	t.Letters += other.Letters
	t.Modifiers += other.Modifiers
	t.Special += other.Special
	t.Clicks += other.Clicks
	t.Scrolls += other.Scrolls
	t.ScrollSteps += other.ScrollSteps
	t.DistancePx += other.DistancePx
}

// FocusSpan is an interval during which one application held the foreground.
// End is nil while the span is open.
type FocusSpan struct {
	App   string
	Start time.Time
	End   *time.Time
}

// Open reports whether the span has not been closed yet.
func (s FocusSpan) Open() bool { return s.End == nil }

// Duration returns the span length, measuring open spans up to now.
func (s FocusSpan) Duration(now time.Time) time.Duration {
	end := now
	if s.End != nil {
		end = *s.End
	}
	if end.Before(s.Start) {
		return 0
	}
	return end.Sub(s.Start)
}

// SplitByDate divides the closed part of a span into per-day seconds so that
// spans crossing midnight are credited to both dates.
func (s FocusSpan) SplitByDate(now time.Time) map[string]float64 {
	out := make(map[string]float64)
	start := s.Start.Local()
	end := now.Local()
	if s.End != nil {
		end = s.End.Local()
	}
	for start.Before(end) {
		y, m, d := start.Date()
		next := time.Date(y, m, d+1, 0, 0, 0, 0, start.Location())
		if next.After(end) {
			next = end
		}
		out[start.Format(DateLayout)] += next.Sub(start).Seconds()
		start = next
	}
	return out
}

// RetentionPolicy bounds how long bucketed data is kept. Days <= 0 keeps
// everything.
type RetentionPolicy struct {
	Days int
}

// Forever is the keep-everything policy.
var Forever = RetentionPolicy{}

// KeepsForever reports whether nothing is ever pruned.
func (p RetentionPolicy) KeepsForever() bool { return p.Days <= 0 }

// Horizon returns the oldest date (inclusive) kept under the policy.
func (p RetentionPolicy) Horizon(now time.Time) string {
	local := now.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d-p.Days, 0, 0, 0, 0, local.Location()).Format(DateLayout)
}
