// Package monitor describes the display layout used to place pointer samples
// and to convert pixel distances into physical units.
package monitor

import (
	"sort"
)

// DefaultPPI is the fallback when a display reports no physical size
// (96 DPI, the common desktop default).
const DefaultPPI = 96.0

const (
	mmPerInch   = 25.4
	inchesPerM  = 1000.0 / mmPerInch
	inchesPerFt = 12.0
)

// Monitor is one display in global desktop coordinates.
type Monitor struct {
	ID       int     `koanf:"id"`
	X        int     `koanf:"x"`
	Y        int     `koanf:"y"`
	Width    int     `koanf:"width"`
	Height   int     `koanf:"height"`
	WidthMM  float64 `koanf:"width_mm"`
	HeightMM float64 `koanf:"height_mm"`
}

// Contains reports whether the global point lies on this monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// PPI returns pixels per inch derived from the physical width, falling back
// to DefaultPPI.
func (m Monitor) PPI() float64 {
	if m.WidthMM <= 0 || m.Width <= 0 {
		return DefaultPPI
	}
	return float64(m.Width) / (m.WidthMM / mmPerInch)
}

// PixelsToInches converts a pixel distance on this monitor.
func (m Monitor) PixelsToInches(pixels float64) float64 {
	return pixels / m.PPI()
}

// PixelsToMeters converts a pixel distance on this monitor.
func (m Monitor) PixelsToMeters(pixels float64) float64 {
	return m.PixelsToInches(pixels) / inchesPerM
}

// Layout is an immutable set of monitors.
type Layout struct {
	monitors []Monitor
}

// Default is a single 1920x1080 monitor at the origin.
func Default() Monitor {
	return Monitor{ID: 0, Width: 1920, Height: 1080}
}

// NewLayout builds a layout; an empty list yields the default monitor.
func NewLayout(monitors []Monitor) *Layout {
	if len(monitors) == 0 {
		monitors = []Monitor{Default()}
	}
	ms := make([]Monitor, len(monitors))
	copy(ms, monitors)
	sort.Slice(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
	return &Layout{monitors: ms}
}

// Monitors returns a copy of the monitor list ordered by ID.
func (l *Layout) Monitors() []Monitor {
	out := make([]Monitor, len(l.monitors))
	copy(out, l.monitors)
	return out
}

// Get returns the monitor with the given ID.
func (l *Layout) Get(id int) (Monitor, bool) {
	for _, m := range l.monitors {
		if m.ID == id {
			return m, true
		}
	}
	return Monitor{}, false
}

// Locate maps a global point to (monitor ID, local x, local y). Points off
// every monitor are attributed to the first monitor and left unclipped; the
// heatmap clips them later.
func (l *Layout) Locate(x, y int) (int, int, int) {
	for _, m := range l.monitors {
		if m.Contains(x, y) {
			return m.ID, x - m.X, y - m.Y
		}
	}
	first := l.monitors[0]
	return first.ID, x - first.X, y - first.Y
}

// AveragePPI returns the mean PPI across monitors.
func (l *Layout) AveragePPI() float64 {
	var sum float64
	for _, m := range l.monitors {
		sum += m.PPI()
	}
	return sum / float64(len(l.monitors))
}

// PixelsToMeters converts a pixel distance using the average PPI of the
// layout. Stored distances are not tagged per monitor, so this is a
// presentation-time approximation.
func (l *Layout) PixelsToMeters(pixels float64) float64 {
	return pixels / l.AveragePPI() / inchesPerM
}

// PixelsToFeet converts a pixel distance using the average PPI.
func (l *Layout) PixelsToFeet(pixels float64) float64 {
	return pixels / l.AveragePPI() / inchesPerFt
}
