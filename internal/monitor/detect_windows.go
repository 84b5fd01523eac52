//go:build windows

package monitor

import (
	"errors"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	gdi32                = windows.NewLazySystemDLL("gdi32.dll")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procGetDeviceCaps    = gdi32.NewProc("GetDeviceCaps")
)

const (
	smCXScreen = 0
	smCYScreen = 1
	horzSize   = 4
	vertSize   = 6
)

// Detect reports the primary display with its physical size from GDI.
func Detect() ([]Monitor, error) {
	w, _, _ := procGetSystemMetrics.Call(smCXScreen)
	h, _, _ := procGetSystemMetrics.Call(smCYScreen)
	if w == 0 || h == 0 {
		return nil, errors.New("GetSystemMetrics returned no screen size")
	}

	m := Monitor{ID: 0, Width: int(w), Height: int(h)}

	hdc, _, _ := procGetDC.Call(0)
	if hdc != 0 {
		wmm, _, _ := procGetDeviceCaps.Call(hdc, horzSize)
		hmm, _, _ := procGetDeviceCaps.Call(hdc, vertSize)
		procReleaseDC.Call(0, hdc)
		m.WidthMM = float64(int32(wmm))
		m.HeightMM = float64(int32(hmm))
	}
	return []Monitor{m}, nil
}
