//go:build darwin
// +build darwin

package hook

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>
#include <stdint.h>

extern CGEventRef goHookEvent(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static int checkAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

static CFMachPortRef createEventTap(uintptr_t handle) {
    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) |
        CGEventMaskBit(kCGEventFlagsChanged) |
        CGEventMaskBit(kCGEventLeftMouseDown) |
        CGEventMaskBit(kCGEventRightMouseDown) |
        CGEventMaskBit(kCGEventOtherMouseDown) |
        CGEventMaskBit(kCGEventMouseMoved) |
        CGEventMaskBit(kCGEventLeftMouseDragged) |
        CGEventMaskBit(kCGEventRightMouseDragged) |
        CGEventMaskBit(kCGEventOtherMouseDragged) |
        CGEventMaskBit(kCGEventScrollWheel);
    return CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        mask,
        goHookEvent,
        (void *)handle
    );
}

static CFRunLoopSourceRef addTapToRunLoop(CFMachPortRef tap) {
    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
    CGEventTapEnable(tap, true);
    return source;
}

static void removeTap(CFMachPortRef tap, CFRunLoopSourceRef source) {
    CGEventTapEnable(tap, false);
    CFRunLoopRemoveSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
    CFRelease(source);
    CFMachPortInvalidate(tap);
    CFRelease(tap);
}

static void enableTap(CFMachPortRef tap) {
    CGEventTapEnable(tap, true);
}

static void runFor(double seconds) {
    CFRunLoopRunInMode(kCFRunLoopDefaultMode, seconds, false);
}

static int eventKeycode(CGEventRef event) {
    return (int)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}

static int eventIsRepeat(CGEventRef event) {
    return (int)CGEventGetIntegerValueField(event, kCGKeyboardEventAutorepeat);
}

static uint64_t eventFlags(CGEventRef event) {
    return (uint64_t)CGEventGetFlags(event);
}

static void eventLocation(CGEventRef event, double *x, double *y) {
    CGPoint p = CGEventGetLocation(event);
    *x = p.x;
    *y = p.y;
}

static int eventButton(CGEventRef event) {
    return (int)CGEventGetIntegerValueField(event, kCGMouseEventButtonNumber);
}

static int64_t eventScrollLines(CGEventRef event) {
    return CGEventGetIntegerValueField(event, kCGScrollWheelEventDeltaAxis1);
}
*/
import "C"
import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"runtime/cgo"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/aayushbajaj/activity-telemetry/internal/keymap"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// runSlice bounds how long the run loop sleeps between stop checks.
const runSlice = 0.25

type tapListener struct {
	opts Options

	mu      sync.Mutex
	running bool
	stop    atomic.Bool
	done    chan struct{}

	// touched only on the run loop thread
	em        *emitter
	tap       C.CFMachPortRef
	prevFlags uint64
}

func newPlatform(opts Options) Listener {
	return &tapListener{opts: opts}
}

// Start implements Listener. The tap runs on its own locked OS thread.
func (l *tapListener) Start(cb Callback) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return errors.New("listener already running")
	}
	if C.checkAccessibilityPermissions() == 0 {
		return fmt.Errorf("%w: accessibility permissions not granted - please enable in System Settings > Privacy & Security > Accessibility", model.ErrCaptureUnavailable)
	}

	l.em = newEmitter(l.opts, cb)
	l.prevFlags = 0
	l.stop.Store(false)
	l.done = make(chan struct{})

	installed := make(chan error, 1)
	go l.loop(installed)
	if err := <-installed; err != nil {
		return err
	}
	l.running = true
	return nil
}

func (l *tapListener) loop(installed chan<- error) {
	defer close(l.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	handle := cgo.NewHandle(l)
	defer handle.Delete()

	tap := C.createEventTap(C.uintptr_t(handle))
	if tap == 0 {
		installed <- fmt.Errorf("%w: failed to create event tap", model.ErrCaptureUnavailable)
		return
	}
	l.tap = tap
	source := C.addTapToRunLoop(tap)
	installed <- nil

	for !l.stop.Load() {
		C.runFor(C.double(runSlice))
	}
	C.removeTap(tap, source)
}

// Stop implements Listener.
func (l *tapListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.stop.Store(true)
	<-l.done
	l.running = false
}

//export goHookEvent
func goHookEvent(_ C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	l, ok := cgo.Handle(uintptr(refcon)).Value().(*tapListener)
	if !ok || l.stop.Load() {
		return event
	}

	switch eventType {
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		C.enableTap(l.tap)
	case C.kCGEventKeyDown:
		// holding a key counts once
		if C.eventIsRepeat(event) != 0 {
			return event
		}
		l.em.key(keymap.Darwin(int(C.eventKeycode(event))))
	case C.kCGEventFlagsChanged:
		// a modifier went down when a flag bit is newly set
		flags := uint64(C.eventFlags(event))
		diff := flags ^ l.prevFlags
		l.prevFlags = flags
		if flags&diff != 0 {
			l.em.key(keymap.Darwin(int(C.eventKeycode(event))))
		}
	case C.kCGEventLeftMouseDown:
		x, y := location(event)
		l.em.click(model.ButtonLeft, x, y)
	case C.kCGEventRightMouseDown:
		x, y := location(event)
		l.em.click(model.ButtonRight, x, y)
	case C.kCGEventOtherMouseDown:
		b := model.ButtonOther
		if C.eventButton(event) == 2 {
			b = model.ButtonMiddle
		}
		x, y := location(event)
		l.em.click(b, x, y)
	case C.kCGEventMouseMoved, C.kCGEventLeftMouseDragged,
		C.kCGEventRightMouseDragged, C.kCGEventOtherMouseDragged:
		x, y := location(event)
		l.em.move(x, y)
	case C.kCGEventScrollWheel:
		x, y := location(event)
		l.em.scroll(float64(C.eventScrollLines(event)), x, y)
	}
	return event
}

func location(event C.CGEventRef) (int, int) {
	var x, y C.double
	C.eventLocation(event, &x, &y)
	return int(math.Round(float64(x))), int(math.Round(float64(y)))
}
