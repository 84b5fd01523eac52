//go:build windows

package hook

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/aayushbajaj/activity-telemetry/internal/keymap"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204
	wmMButtonDown = 0x0207
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B

	llkhfInjected = 0x10
	wheelDelta    = 120
)

type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type point struct {
	X, Y int32
}

type msllhookstruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// Hook procedures are created once; windows.NewCallback slots are never
// released. They dispatch to whichever listener is active.
var (
	active       atomic.Pointer[llListener]
	keyboardProc = windows.NewCallback(lowLevelKeyboardProc)
	mouseProc    = windows.NewCallback(lowLevelMouseProc)
)

type llListener struct {
	opts Options

	mu       sync.Mutex
	running  bool
	threadID uint32
	done     chan struct{}

	// touched only on the hook thread
	em *emitter
}

func newPlatform(opts Options) Listener {
	return &llListener{opts: opts}
}

// Start implements Listener. Hooks are installed on a dedicated locked
// thread that pumps messages until Stop.
func (l *llListener) Start(cb Callback) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return errors.New("listener already running")
	}
	if !active.CompareAndSwap(nil, l) {
		return errors.New("another listener is already running")
	}

	l.em = newEmitter(l.opts, cb)
	l.done = make(chan struct{})
	installed := make(chan error, 1)
	go l.loop(installed)
	if err := <-installed; err != nil {
		active.CompareAndSwap(l, nil)
		return err
	}
	l.running = true
	return nil
}

func (l *llListener) loop(installed chan<- error) {
	defer close(l.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.threadID = windows.GetCurrentThreadId()

	kh, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardProc, 0, 0)
	if kh == 0 {
		installed <- fmt.Errorf("%w: keyboard hook: %v", model.ErrCaptureUnavailable, err)
		return
	}
	defer procUnhookWindowsHookEx.Call(kh)

	mh, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseProc, 0, 0)
	if mh == 0 {
		installed <- fmt.Errorf("%w: mouse hook: %v", model.ErrCaptureUnavailable, err)
		return
	}
	defer procUnhookWindowsHookEx.Call(mh)

	installed <- nil

	var m msg
	for {
		// 0 on WM_QUIT, -1 on error
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
	}
}

// Stop implements Listener.
func (l *llListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	procPostThreadMessageW.Call(uintptr(l.threadID), wmQuit, 0, 0)
	<-l.done
	active.CompareAndSwap(l, nil)
	l.running = false
}

func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if l := active.Load(); nCode >= 0 && l != nil {
		kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		// synthetic input from other programs is not the user typing
		if kb.Flags&llkhfInjected == 0 {
			name := keymap.Windows(kb.VkCode)
			switch wParam {
			case wmKeyDown, wmSysKeyDown:
				l.em.keyDown(name)
			case wmKeyUp, wmSysKeyUp:
				l.em.keyUp(name)
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

func lowLevelMouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if l := active.Load(); nCode >= 0 && l != nil {
		ms := (*msllhookstruct)(unsafe.Pointer(lParam))
		x, y := int(ms.Pt.X), int(ms.Pt.Y)
		switch wParam {
		case wmMouseMove:
			l.em.move(x, y)
		case wmLButtonDown:
			l.em.click(model.ButtonLeft, x, y)
		case wmRButtonDown:
			l.em.click(model.ButtonRight, x, y)
		case wmMButtonDown:
			l.em.click(model.ButtonMiddle, x, y)
		case wmXButtonDown:
			l.em.click(model.ButtonOther, x, y)
		case wmMouseWheel:
			delta := int16(ms.MouseData >> 16)
			l.em.scroll(float64(delta)/wheelDelta, x, y)
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}
