package aggregator

import (
	"math"

	"github.com/aayushbajaj/activity-telemetry/internal/keymap"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// Spatial bin sizes in pixels. The hourly tier keeps pixel resolution so a
// sample always lands in the grid cell containing it, whatever the scale.
const (
	SampleBin = 1
	RollupBin = 20
)

func bin(v, size int) int {
	return int(math.Floor(float64(v)/float64(size))) * size
}

// apply folds one event into d. Every counter is credited to both the
// global scope and the event's app, so global always equals the sum over
// apps.
func apply(d *model.Delta, ev model.InputEvent) {
	app := ev.AppOrUnknown()
	scopes := [2]model.BucketKey{
		model.BucketFor(ev.At, model.ScopeGlobal),
		model.BucketFor(ev.At, model.AppScope(app)),
	}
	date := scopes[0].Date
	usage := d.App(date, app)

	switch ev.Kind {
	case model.KindKeyPress:
		class := keymap.Classify(ev.Key)
		for _, b := range scopes {
			d.KeyCounter(b)[ev.Key]++
			t := d.Bucket(b)
			t.Keys++
			switch class {
			case keymap.ClassLetter:
				t.Letters++
			case keymap.ClassModifier:
				t.Modifiers++
			default:
				t.Special++
			}
		}
		usage.Keys++

	case model.KindMouseClick:
		for _, b := range scopes {
			d.Bucket(b).Clicks++
		}
		addSample(d, scopes, ev, model.SampleClick)
		usage.Clicks++

	case model.KindMouseMove:
		dist := ev.Distance()
		for _, b := range scopes {
			d.Bucket(b).DistancePx += dist
		}
		addSample(d, scopes, ev, model.SampleMove)
		usage.DistancePx += dist

	case model.KindScroll:
		steps := math.Abs(ev.Delta)
		for _, b := range scopes {
			t := d.Bucket(b)
			t.Scrolls++
			t.ScrollSteps += steps
		}
		usage.Scrolls++

	default:
		return
	}
	d.Events++
}

func addSample(d *model.Delta, scopes [2]model.BucketKey, ev model.InputEvent, kind model.SampleKind) {
	sx, sy := bin(ev.X, SampleBin), bin(ev.Y, SampleBin)
	rx, ry := bin(ev.X, RollupBin), bin(ev.Y, RollupBin)
	for _, b := range scopes {
		d.Samples[model.SampleKey{Bucket: b, Monitor: ev.Monitor, Kind: kind, X: sx, Y: sy}]++
		d.Rollup[model.RollupKey{Date: b.Date, Scope: b.Scope, Monitor: ev.Monitor, Kind: kind, X: rx, Y: ry}]++
	}
}

// applySpan credits a closed span's foreground time, split across the
// calendar dates it covers.
func applySpan(d *model.Delta, span model.FocusSpan) {
	if span.End == nil {
		return
	}
	d.Spans = append(d.Spans, span)
	for date, secs := range span.SplitByDate(*span.End) {
		d.App(date, span.App).ForegroundSeconds += secs
	}
}
