// Package foreground tracks which application holds the foreground and turns
// focus changes into spans.
package foreground

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Transition reports that App became the foreground application at At.
type Transition struct {
	App string
	At  time.Time
}

// Tracker maintains the single open focus span. Observe and Close are
// serialized; Current may be called from any thread without locking.
type Tracker struct {
	current atomic.Pointer[string]

	mu   sync.Mutex
	open *model.FocusSpan
	last time.Time
}

// NewTracker returns a tracker with no open span.
func NewTracker() *Tracker {
	t := &Tracker{}
	unknown := model.AppUnknown
	t.current.Store(&unknown)
	return t
}

// Current returns the foreground app for attribution of input events.
func (t *Tracker) Current() string {
	return *t.current.Load()
}

// Open returns a copy of the open span, or nil.
func (t *Tracker) Open() *model.FocusSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		return nil
	}
	s := *t.open
	return &s
}

// Observe applies a transition. It returns the span closed by it and the
// span it opened; both are nil when the app did not change. A transition
// earlier than the last accepted one is discarded with ErrClockAnomaly.
func (t *Tracker) Observe(tr Transition) (closed, opened *model.FocusSpan, err error) {
	app := tr.App
	if app == "" {
		app = model.AppUnknown
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && tr.At.Before(t.last) {
		return nil, nil, fmt.Errorf("%w: %s at %s precedes %s", model.ErrClockAnomaly,
			app, tr.At.Format(time.RFC3339Nano), t.last.Format(time.RFC3339Nano))
	}
	if t.open != nil && t.open.App == app {
		return nil, nil, nil
	}

	t.last = tr.At
	if t.open != nil {
		end := tr.At
		t.open.End = &end
		closed = t.open
	}
	t.open = &model.FocusSpan{App: app, Start: tr.At}
	t.current.Store(&app)

	o := *t.open
	return closed, &o, nil
}

// Close ends the open span at at, typically on shutdown. It returns nil when
// no span is open.
func (t *Tracker) Close(at time.Time) *model.FocusSpan {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.open == nil {
		return nil
	}
	if at.Before(t.open.Start) {
		at = t.open.Start
	}
	t.open.End = &at
	closed := t.open
	t.open = nil
	t.last = at

	unknown := model.AppUnknown
	t.current.Store(&unknown)
	return closed
}
