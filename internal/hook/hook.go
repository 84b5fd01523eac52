// Package hook installs OS-level keyboard and mouse hooks and turns raw
// platform events into model.InputEvent values.
//
// Everything reachable from a hook callback is cheap: field extraction, an
// atomic load of the foreground app and the monitor layout, and whatever the
// caller's Callback does (in practice a non-blocking queue insert).
package hook

import (
	"sync/atomic"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

// Callback receives each normalized event on the hook thread. It must not
// block.
type Callback func(model.InputEvent)

// Listener is a source of input events.
type Listener interface {
	// Start installs the hooks and begins delivering events to cb. It
	// returns an error wrapping model.ErrCaptureUnavailable when the OS
	// refuses the hooks.
	Start(cb Callback) error

	// Stop removes the hooks. No callback runs after Stop returns.
	Stop()
}

// AppSource reports the current foreground application.
type AppSource interface {
	Current() string
}

// Options are shared by every backend.
type Options struct {
	// Apps attributes events to the foreground app. Nil tags every event
	// unknown.
	Apps AppSource

	// Layout places global pointer coordinates on a monitor. It is swapped
	// atomically when the configuration changes.
	Layout *atomic.Pointer[monitor.Layout]

	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns the listener for the running platform.
func New(opts Options) Listener {
	return newPlatform(opts)
}
