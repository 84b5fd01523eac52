package model

import "time"

// SampleKey identifies an hourly spatial bin.
type SampleKey struct {
	Bucket  BucketKey
	Monitor int
	Kind    SampleKind
	X, Y    int
}

// RollupKey identifies a daily spatial bin of the reduced tier.
type RollupKey struct {
	Date    string
	Scope   string
	Monitor int
	Kind    SampleKind
	X, Y    int
}

// AppDayKey identifies one app's usage on one date.
type AppDayKey struct {
	Date string
	App  string
}

// Delta is the set of additive changes accumulated since the last flush.
// Applying the same Delta twice must be prevented by its ID.
type Delta struct {
	ID        string
	CreatedAt time.Time

	Keys    map[BucketKey]KeyCounter
	Totals  map[BucketKey]*Totals
	Samples map[SampleKey]float64
	Rollup  map[RollupKey]float64
	Apps    map[AppDayKey]*AppUsageRecord

	// Spans holds focus spans closed since the last flush.
	Spans []FocusSpan

	// Events is the number of input events folded in.
	Events int
}

// NewDelta returns an empty delta with the given identity.
func NewDelta(id string, now time.Time) *Delta {
	return &Delta{
		ID:        id,
		CreatedAt: now,
		Keys:      make(map[BucketKey]KeyCounter),
		Totals:    make(map[BucketKey]*Totals),
		Samples:   make(map[SampleKey]float64),
		Rollup:    make(map[RollupKey]float64),
		Apps:      make(map[AppDayKey]*AppUsageRecord),
	}
}

// Empty reports whether the delta carries no changes.
func (d *Delta) Empty() bool {
	return len(d.Keys) == 0 && len(d.Totals) == 0 && len(d.Samples) == 0 &&
		len(d.Rollup) == 0 && len(d.Apps) == 0 && len(d.Spans) == 0
}

// KeyCounter returns the counter for a bucket, creating it.
func (d *Delta) KeyCounter(b BucketKey) KeyCounter {
	c, ok := d.Keys[b]
	if !ok {
		c = make(KeyCounter)
		d.Keys[b] = c
	}
	return c
}

// Bucket returns the totals for a bucket, creating them.
func (d *Delta) Bucket(b BucketKey) *Totals {
	t, ok := d.Totals[b]
	if !ok {
		t = &Totals{}
		d.Totals[b] = t
	}
	return t
}

// App returns the usage record for an app on a date, creating it.
func (d *Delta) App(date, app string) *AppUsageRecord {
	k := AppDayKey{Date: date, App: app}
	r, ok := d.Apps[k]
	if !ok {
		r = &AppUsageRecord{Date: date, App: app}
		d.Apps[k] = r
	}
	return r
}

// Merge folds other into d. Used when a failed delta is retried together
// with newer changes.
func (d *Delta) Merge(other *Delta) {
	for b, c := range other.Keys {
		d.KeyCounter(b).Add(c)
	}
	for b, t := range other.Totals {
		d.Bucket(b).Add(*t)
	}
	for k, w := range other.Samples {
		d.Samples[k] += w
	}
	for k, w := range other.Rollup {
		d.Rollup[k] += w
	}
	for k, r := range other.Apps {
		dst := d.App(k.Date, k.App)
		dst.Keys += r.Keys
		dst.Clicks += r.Clicks
		dst.Scrolls += r.Scrolls
		dst.DistancePx += r.DistancePx
		dst.ForegroundSeconds += r.ForegroundSeconds
	}
	d.Spans = append(d.Spans, other.Spans...)
	d.Events += other.Events
}

// Clone returns a deep copy that shares nothing with d.
func (d *Delta) Clone() *Delta {
	c := NewDelta(d.ID, d.CreatedAt)
	c.Merge(d)
	return c
}
