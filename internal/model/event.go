// Package model holds the value types shared by capture, aggregation, storage
// and heatmap code.
package model

import (
	"math"
	"time"
)

// Kind tags the variant carried by an InputEvent.
type Kind uint8

const (
	KindKeyPress Kind = iota + 1
	KindMouseClick
	KindMouseMove
	KindScroll
)

func (k Kind) String() string {
	switch k {
	case KindKeyPress:
		return "key"
	case KindMouseClick:
		return "click"
	case KindMouseMove:
		return "move"
	case KindScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Button identifies a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
	ButtonOther
)

// AppUnknown tags events and spans whose executable could not be resolved.
const AppUnknown = "unknown"

// InputEvent is a normalized hardware event. Only identity, position and
// magnitude are kept; no text is ever reconstructed from key presses.
//
// Fields not relevant to Kind are zero.
type InputEvent struct {
	Kind Kind
	At   time.Time
	// App is the foreground executable path at capture time.
	App string

	Key    string
	Button Button

	// X and Y are monitor-local pixel coordinates.
	X       int
	Y       int
	Monitor int

	DX float64
	DY float64

	// Delta is the scroll amount in wheel notches (sign kept).
	Delta float64
}

// KeyPress builds a key press event.
func KeyPress(at time.Time, app, key string) InputEvent {
	return InputEvent{Kind: KindKeyPress, At: at, App: app, Key: key}
}

// MouseClick builds a click event at monitor-local coordinates.
func MouseClick(at time.Time, app string, button Button, x, y, monitor int) InputEvent {
	return InputEvent{Kind: KindMouseClick, At: at, App: app, Button: button, X: x, Y: y, Monitor: monitor}
}

// MouseMove builds a move event; dx/dy are the pixel deltas since the previous
// position, x/y the new monitor-local position.
func MouseMove(at time.Time, app string, dx, dy float64, x, y, monitor int) InputEvent {
	return InputEvent{Kind: KindMouseMove, At: at, App: app, DX: dx, DY: dy, X: x, Y: y, Monitor: monitor}
}

// Scroll builds a scroll event.
func Scroll(at time.Time, app string, delta float64, x, y, monitor int) InputEvent {
	return InputEvent{Kind: KindScroll, At: at, App: app, Delta: delta, X: x, Y: y, Monitor: monitor}
}

// Distance returns the Euclidean magnitude of a move delta in pixels.
func (e InputEvent) Distance() float64 {
	return math.Hypot(e.DX, e.DY)
}

// AppOrUnknown returns App, or AppUnknown when empty.
func (e InputEvent) AppOrUnknown() string {
	if e.App == "" {
		return AppUnknown
	}
	return e.App
}
