package hook

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

type fixedApp string

func (a fixedApp) Current() string { return string(a) }

func newTestManual(app string) (*Manual, *[]model.InputEvent) {
	layout := &atomic.Pointer[monitor.Layout]{}
	layout.Store(monitor.NewLayout([]monitor.Monitor{
		{ID: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Width: 1280, Height: 1024},
	}))
	fixed := time.Date(2024, 5, 15, 10, 0, 0, 0, time.Local)

	var got []model.InputEvent
	m := NewManual(Options{
		Apps:   fixedApp(app),
		Layout: layout,
		Now:    func() time.Time { return fixed },
	})
	if err := m.Start(func(ev model.InputEvent) { got = append(got, ev) }); err != nil {
		panic(err)
	}
	return m, &got
}

func TestKeyRepeatCountsOnce(t *testing.T) {
	m, got := newTestManual("/usr/bin/editor")

	m.KeyDown("A")
	m.KeyDown("A")
	m.KeyDown("A")
	m.KeyUp("A")
	m.Tap("A")

	if len(*got) != 2 {
		t.Fatalf("Expected 2 presses (hold + tap), got %d", len(*got))
	}
	for _, ev := range *got {
		if ev.Kind != model.KindKeyPress || ev.Key != "A" || ev.App != "/usr/bin/editor" {
			t.Errorf("Unexpected event %+v", ev)
		}
	}
}

func TestClickIsMonitorLocal(t *testing.T) {
	m, got := newTestManual("app")

	m.Click(model.ButtonLeft, 100, 200)
	m.Click(model.ButtonRight, 2000, 50)

	tests := []struct {
		button  model.Button
		monitor int
		x, y    int
	}{
		{model.ButtonLeft, 0, 100, 200},
		{model.ButtonRight, 1, 80, 50},
	}
	if len(*got) != len(tests) {
		t.Fatalf("Expected %d clicks, got %d", len(tests), len(*got))
	}
	for i, tt := range tests {
		ev := (*got)[i]
		if ev.Button != tt.button || ev.Monitor != tt.monitor || ev.X != tt.x || ev.Y != tt.y {
			t.Errorf("click %d = %+v, want button=%d monitor=%d (%d,%d)", i, ev, tt.button, tt.monitor, tt.x, tt.y)
		}
	}
}

func TestMoveReportsDisplacement(t *testing.T) {
	m, got := newTestManual("app")

	m.MoveTo(0, 0)  // primes position
	m.MoveTo(3, 4)  // distance 5
	m.MoveTo(3, 4)  // no movement
	m.MoveTo(3, 14) // distance 10

	if len(*got) != 2 {
		t.Fatalf("Expected 2 moves, got %d", len(*got))
	}
	var total float64
	for _, ev := range *got {
		total += ev.Distance()
	}
	if total != 15 {
		t.Errorf("Expected total distance 15, got %f", total)
	}
}

func TestScrollKeepsSign(t *testing.T) {
	m, got := newTestManual("app")

	m.Scroll(-2, 10, 10)
	m.Scroll(0, 10, 10)

	if len(*got) != 1 {
		t.Fatalf("Expected 1 scroll event, got %d", len(*got))
	}
	if (*got)[0].Delta != -2 {
		t.Errorf("Expected delta -2, got %f", (*got)[0].Delta)
	}
}

func TestEmptyAppIsUnknown(t *testing.T) {
	m, got := newTestManual("")
	m.Tap("Space")
	if (*got)[0].App != model.AppUnknown {
		t.Errorf("Expected %q, got %q", model.AppUnknown, (*got)[0].App)
	}

	var none []model.InputEvent
	n := NewManual(Options{})
	_ = n.Start(func(ev model.InputEvent) { none = append(none, ev) })
	n.Click(model.ButtonLeft, 5, 5)
	if none[0].App != model.AppUnknown || none[0].Monitor != 0 || none[0].X != 5 {
		t.Errorf("Expected unknown app on monitor 0 without layout, got %+v", none[0])
	}
}

func TestNoCallbackAfterStop(t *testing.T) {
	m, got := newTestManual("app")
	m.Tap("A")
	m.Stop()
	m.Tap("B")
	m.Click(model.ButtonLeft, 1, 1)

	if len(*got) != 1 {
		t.Errorf("Expected 1 event before stop, got %d", len(*got))
	}
	if err := m.Start(func(model.InputEvent) {}); err != nil {
		t.Errorf("Expected restart after stop to succeed: %v", err)
	}
	if err := m.Start(func(model.InputEvent) {}); err == nil {
		t.Error("Expected second Start to fail while running")
	}
}
