package hook

import (
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

// emitter holds per-listener state touched only from the hook thread.
type emitter struct {
	opts Options
	cb   Callback

	lastX, lastY int
	havePos      bool

	// keys currently held, for platforms that report auto-repeat as
	// repeated key-downs
	down map[string]bool
}

func newEmitter(opts Options, cb Callback) *emitter {
	return &emitter{opts: opts, cb: cb, down: make(map[string]bool)}
}

func (e *emitter) now() time.Time {
	if e.opts.Now != nil {
		return e.opts.Now()
	}
	return time.Now()
}

func (e *emitter) app() string {
	if e.opts.Apps == nil {
		return model.AppUnknown
	}
	if app := e.opts.Apps.Current(); app != "" {
		return app
	}
	return model.AppUnknown
}

func (e *emitter) locate(x, y int) (int, int, int) {
	var l *monitor.Layout
	if e.opts.Layout != nil {
		l = e.opts.Layout.Load()
	}
	if l == nil {
		return 0, x, y
	}
	return l.Locate(x, y)
}

// keyDown emits a press unless the key is already held.
func (e *emitter) keyDown(name string) {
	if e.down[name] {
		return
	}
	e.down[name] = true
	e.cb(model.KeyPress(e.now(), e.app(), name))
}

func (e *emitter) keyUp(name string) {
	delete(e.down, name)
}

// key emits a press without repeat tracking, for platforms that flag
// auto-repeat themselves.
func (e *emitter) key(name string) {
	e.cb(model.KeyPress(e.now(), e.app(), name))
}

func (e *emitter) click(b model.Button, x, y int) {
	id, lx, ly := e.locate(x, y)
	e.cb(model.MouseClick(e.now(), e.app(), b, lx, ly, id))
}

// move emits the displacement from the previous pointer position. The first
// position seen only primes the tracker.
func (e *emitter) move(x, y int) {
	if !e.havePos {
		e.lastX, e.lastY, e.havePos = x, y, true
		return
	}
	dx, dy := x-e.lastX, y-e.lastY
	if dx == 0 && dy == 0 {
		return
	}
	e.lastX, e.lastY = x, y
	id, lx, ly := e.locate(x, y)
	e.cb(model.MouseMove(e.now(), e.app(), float64(dx), float64(dy), lx, ly, id))
}

func (e *emitter) scroll(delta float64, x, y int) {
	if delta == 0 {
		return
	}
	id, lx, ly := e.locate(x, y)
	e.cb(model.Scroll(e.now(), e.app(), delta, lx, ly, id))
}
