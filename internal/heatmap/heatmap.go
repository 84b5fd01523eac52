// Package heatmap turns stored spatial samples into smoothed density grids.
// It only reads the store and never touches the capture path.
package heatmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/config"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

// ErrUnknownMonitor is returned for a monitor ID not in the layout.
var ErrUnknownMonitor = errors.New("unknown monitor")

// Storage tiers
const (
	TierSamples = "samples"
	TierRollup  = "rollup"
)

// Source is the read side of the store the engine needs.
type Source interface {
	SpatialSamples(ctx context.Context, r model.TimeRange, monitor int, scope string, kind model.SampleKind) ([]model.SpatialSample, error)
	SpatialRollup(ctx context.Context, date string, monitor int, scope string, kind model.SampleKind) ([]model.SpatialSample, error)
	OldestDate(ctx context.Context) (string, error)
}

// Settings tune grid construction.
type Settings struct {
	Scale         float64
	Sigma         float64
	RawRangeLimit time.Duration
}

// SettingsFrom extracts heatmap settings from a config snapshot.
func SettingsFrom(c *config.Config) Settings {
	return Settings{
		Scale:         c.Heatmap.Scale,
		Sigma:         c.Heatmap.Sigma,
		RawRangeLimit: c.Heatmap.RawRangeLimit,
	}
}

// Query selects the samples a grid is built from. An empty App means all
// applications.
type Query struct {
	Range   model.TimeRange
	Monitor int
	App     string
	Kind    model.SampleKind
}

// Engine builds density grids on demand.
type Engine struct {
	source   Source
	layout   *atomic.Pointer[monitor.Layout]
	settings atomic.Pointer[Settings]
	now      func() time.Time
}

// New creates an engine. layout is read on every query so that monitor
// changes apply without rebuilding the engine.
func New(source Source, layout *atomic.Pointer[monitor.Layout], s Settings) *Engine {
	e := &Engine{source: source, layout: layout, now: time.Now}
	e.SetSettings(s)
	return e
}

// SetSettings replaces the settings for subsequent queries.
func (e *Engine) SetSettings(s Settings) {
	if s.Scale <= 0 {
		s.Scale = 0.25
	}
	if s.Sigma <= 0 {
		s.Sigma = 8
	}
	if s.RawRangeLimit <= 0 {
		s.RawRangeLimit = 24 * time.Hour
	}
	e.settings.Store(&s)
}

// Settings returns the active settings.
func (e *Engine) Settings() Settings { return *e.settings.Load() }

// BuildGrid builds the normalized density grid for q. Samples outside the
// monitor are clipped; no samples gives an all-zero grid of full size.
// Cancellation is checked between dates.
func (e *Engine) BuildGrid(ctx context.Context, q Query) (*DensityGrid, error) {
	var layout *monitor.Layout
	if e.layout != nil {
		layout = e.layout.Load()
	}
	if layout == nil {
		layout = monitor.NewLayout(nil)
	}
	mon, ok := layout.Get(q.Monitor)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMonitor, q.Monitor)
	}

	s := e.Settings()
	kind := q.Kind
	if kind == "" {
		kind = model.SampleClick
	}
	scope := model.ScopeGlobal
	if q.App != "" {
		scope = model.AppScope(q.App)
	}

	w := max(1, int(math.Round(float64(mon.Width)*s.Scale)))
	h := max(1, int(math.Round(float64(mon.Height)*s.Scale)))
	g := newGrid(w, h, mon.ID, s.Scale)

	dates, err := e.dates(ctx, q.Range)
	if err != nil {
		return nil, err
	}

	g.Tier = TierSamples
	if q.Range.Duration() > s.RawRangeLimit {
		g.Tier = TierRollup
	}

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var samples []model.SpatialSample
		if g.Tier == TierRollup {
			samples, err = e.source.SpatialRollup(ctx, date, mon.ID, scope, kind)
		} else {
			samples, err = e.source.SpatialSamples(ctx, dayPart(q.Range, date), mon.ID, scope, kind)
		}
		if err != nil {
			return nil, fmt.Errorf("heatmap %s: %w", date, err)
		}
		for _, sm := range samples {
			g.add(mon, sm)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.blur(s.Sigma)
	g.normalize()
	return g, nil
}

// add places one sample, discarding points off the monitor.
func (g *DensityGrid) add(mon monitor.Monitor, sm model.SpatialSample) {
	if sm.X < 0 || sm.Y < 0 || sm.X >= mon.Width || sm.Y >= mon.Height {
		g.Clipped += sm.Weight
		return
	}
	cx := min(int(float64(sm.X)*g.Scale), g.Width-1)
	cy := min(int(float64(sm.Y)*g.Scale), g.Height-1)
	g.Cells[cy*g.Width+cx] += sm.Weight
	g.Samples += sm.Weight
}

// dates lists the calendar dates a range touches. Open ranges start at the
// oldest stored date and end today.
func (e *Engine) dates(ctx context.Context, r model.TimeRange) ([]string, error) {
	if r.Bounded() {
		return r.Dates(), nil
	}
	start, end := r.Start, r.End
	if end.IsZero() {
		end = model.Today(e.now()).End
	}
	if start.IsZero() {
		oldest, err := e.source.OldestDate(ctx)
		if err != nil {
			return nil, fmt.Errorf("heatmap range: %w", err)
		}
		if oldest == "" {
			return nil, nil
		}
		start, err = time.ParseInLocation(model.DateLayout, oldest, time.Local)
		if err != nil {
			return nil, fmt.Errorf("heatmap range: %w", err)
		}
	}
	return model.TimeRange{Start: start, End: end}.Dates(), nil
}

// dayPart intersects r with the calendar day of date.
func dayPart(r model.TimeRange, date string) model.TimeRange {
	day, err := time.ParseInLocation(model.DateLayout, date, time.Local)
	if err != nil {
		return r
	}
	part := model.Today(day)
	if !r.Start.IsZero() && r.Start.After(part.Start) {
		part.Start = r.Start
	}
	if !r.End.IsZero() && r.End.Before(part.End) {
		part.End = r.End
	}
	return part
}
