package model

import (
	"math"
	"testing"
	"time"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindKeyPress, "key"},
		{KindMouseClick, "click"},
		{KindMouseMove, "move"},
		{KindScroll, "scroll"},
		{Kind(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestMoveDistance(t *testing.T) {
	ev := MouseMove(time.Now(), "", 3, 4, 0, 0, 0)
	if d := ev.Distance(); math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance() = %f, want 5", d)
	}
	if ev.AppOrUnknown() != AppUnknown {
		t.Errorf("Expected empty app to map to %q", AppUnknown)
	}
}

func TestKeyCounterAddAndTotal(t *testing.T) {
	c := KeyCounter{"A": 2}
	c.Add(KeyCounter{"A": 3, "B": 1})

	if c["A"] != 5 || c["B"] != 1 {
		t.Errorf("Unexpected counter after Add: %v", c)
	}
	if c.Total() != 6 {
		t.Errorf("Total() = %d, want 6", c.Total())
	}
}

func TestFocusSpanDuration(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	end := start.Add(90 * time.Second)

	open := FocusSpan{App: "a", Start: start}
	if !open.Open() {
		t.Error("Expected span without end to be open")
	}
	if d := open.Duration(start.Add(time.Minute)); d != time.Minute {
		t.Errorf("Open span duration = %v, want 1m", d)
	}

	closed := FocusSpan{App: "a", Start: start, End: &end}
	if d := closed.Duration(start.Add(time.Hour)); d != 90*time.Second {
		t.Errorf("Closed span duration = %v, want 90s", d)
	}
}

func TestFocusSpanSplitByDate(t *testing.T) {
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, time.Local)
	end := time.Date(2024, 3, 2, 0, 15, 0, 0, time.Local)
	span := FocusSpan{App: "a", Start: start, End: &end}

	split := span.SplitByDate(end)
	if split["2024-03-01"] != 30*60 {
		t.Errorf("Expected 1800s on 2024-03-01, got %f", split["2024-03-01"])
	}
	if split["2024-03-02"] != 15*60 {
		t.Errorf("Expected 900s on 2024-03-02, got %f", split["2024-03-02"])
	}
}

func TestRetentionHorizon(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	if got := (RetentionPolicy{Days: 7}).Horizon(now); got != "2024-03-03" {
		t.Errorf("Horizon(7d) = %q, want 2024-03-03", got)
	}
	if !Forever.KeepsForever() {
		t.Error("Expected Forever to keep everything")
	}
	if (RetentionPolicy{Days: -1}).KeepsForever() != true {
		t.Error("Expected negative days to mean forever")
	}
}

func TestTimeRanges(t *testing.T) {
	now := time.Date(2024, 5, 15, 15, 4, 5, 0, time.Local)

	today := Today(now)
	from, to := today.DateBounds()
	if from != "2024-05-15" || to != "2024-05-15" {
		t.Errorf("Today bounds = %s..%s", from, to)
	}
	if today.Duration() != 24*time.Hour {
		t.Errorf("Today duration = %v", today.Duration())
	}

	week := LastDays(now, 7)
	dates := week.Dates()
	if len(dates) != 7 {
		t.Fatalf("Expected 7 dates, got %d", len(dates))
	}
	if dates[0] != "2024-05-09" || dates[6] != "2024-05-15" {
		t.Errorf("Unexpected week dates: %v", dates)
	}

	all := AllTime()
	if all.Bounded() {
		t.Error("AllTime should be unbounded")
	}
	from, to = all.DateBounds()
	if from != "0000-01-01" || to != "9999-12-31" {
		t.Errorf("AllTime bounds = %s..%s", from, to)
	}
}

func TestBucketFor(t *testing.T) {
	at := time.Date(2024, 3, 10, 9, 59, 0, 0, time.Local)
	key := BucketFor(at, ScopeGlobal)
	if key.Date != "2024-03-10" || key.Hour != 9 || key.Scope != ScopeGlobal {
		t.Errorf("Unexpected bucket: %+v", key)
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 5, 15, 15, 4, 5, 0, time.Local)

	tests := []struct {
		name  string
		days  int
		bound bool
	}{
		{"today", 1, true},
		{"week", 7, true},
		{"month", 30, true},
		{"year", 365, true},
		{"all", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.name, now)
			if err != nil {
				t.Fatalf("ParseRange(%q) failed: %v", tt.name, err)
			}
			if r.Bounded() != tt.bound {
				t.Fatalf("Bounded = %v, want %v", r.Bounded(), tt.bound)
			}
			if tt.bound && len(r.Dates()) != tt.days {
				t.Errorf("Expected %d dates, got %d", tt.days, len(r.Dates()))
			}
		})
	}

	if _, err := ParseRange("fortnight", now); err == nil {
		t.Error("Expected an error for an unknown range")
	}
}
