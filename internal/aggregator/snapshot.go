package aggregator

import (
	"fmt"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Snapshot is a point-in-time copy of everything not yet persisted.
type Snapshot struct {
	TakenAt time.Time

	// Delta merges the current delta with any deltas awaiting retry.
	Delta *model.Delta

	// Open is the focus span currently open, if any.
	Open *model.FocusSpan

	Pending  int
	QueueLen int
	Dropped  uint64
}

func hourKey(b model.BucketKey) string {
	return fmt.Sprintf("%s %02d", b.Date, b.Hour)
}

func inRange(b model.BucketKey, r model.TimeRange) bool {
	from, to := r.HourBounds()
	k := hourKey(b)
	return k >= from && k <= to
}

// Totals sums unflushed counters of a scope inside the range.
func (s *Snapshot) Totals(r model.TimeRange, scope string) model.Totals {
	var t model.Totals
	for b, bt := range s.Delta.Totals {
		if b.Scope == scope && inRange(b, r) {
			t.Add(*bt)
		}
	}
	return t
}

// KeyCounts sums unflushed key counts of a scope inside the range.
func (s *Snapshot) KeyCounts(r model.TimeRange, scope string) model.KeyCounter {
	out := make(model.KeyCounter)
	for b, c := range s.Delta.Keys {
		if b.Scope == scope && inRange(b, r) {
			out.Add(c)
		}
	}
	return out
}

// ForegroundSeconds returns unflushed foreground time per app on date,
// including the open span measured up to TakenAt.
func (s *Snapshot) ForegroundSeconds(date string) map[string]float64 {
	out := make(map[string]float64)
	for k, r := range s.Delta.Apps {
		if k.Date == date && r.ForegroundSeconds > 0 {
			out[k.App] += r.ForegroundSeconds
		}
	}
	if s.Open != nil {
		if secs, ok := s.Open.SplitByDate(s.TakenAt)[date]; ok {
			out[s.Open.App] += secs
		}
	}
	return out
}
