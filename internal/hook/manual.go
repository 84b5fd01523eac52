package hook

import (
	"errors"
	"sync"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Manual is a Listener driven by method calls instead of OS hooks. It runs
// raw input through the same normalization as the platform backends and is
// used for replay and tests.
type Manual struct {
	opts Options

	mu sync.Mutex
	em *emitter
}

// NewManual returns a stopped Manual listener.
func NewManual(opts Options) *Manual {
	return &Manual{opts: opts}
}

// Start implements Listener.
func (m *Manual) Start(cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.em != nil {
		return errors.New("listener already running")
	}
	m.em = newEmitter(m.opts, cb)
	return nil
}

// Stop implements Listener.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.em = nil
}

func (m *Manual) with(fn func(e *emitter)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.em != nil {
		fn(m.em)
	}
}

// KeyDown reports a key going down. Repeated downs without an up are
// auto-repeat and ignored.
func (m *Manual) KeyDown(name string) { m.with(func(e *emitter) { e.keyDown(name) }) }

// KeyUp reports a key release.
func (m *Manual) KeyUp(name string) { m.with(func(e *emitter) { e.keyUp(name) }) }

// Tap is KeyDown followed by KeyUp.
func (m *Manual) Tap(name string) {
	m.with(func(e *emitter) {
		e.keyDown(name)
		e.keyUp(name)
	})
}

// Click reports a button press at global coordinates.
func (m *Manual) Click(b model.Button, x, y int) { m.with(func(e *emitter) { e.click(b, x, y) }) }

// MoveTo reports the pointer at global coordinates.
func (m *Manual) MoveTo(x, y int) { m.with(func(e *emitter) { e.move(x, y) }) }

// Scroll reports a wheel movement in notches at global coordinates.
func (m *Manual) Scroll(delta float64, x, y int) {
	m.with(func(e *emitter) { e.scroll(delta, x, y) })
}
