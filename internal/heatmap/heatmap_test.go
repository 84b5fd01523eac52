package heatmap

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

type fakeSource struct {
	samples  []model.SpatialSample
	rollup   map[string][]model.SpatialSample
	oldest   string
	rawCalls int
	dates    []string
	onRollup func(date string)
}

func (f *fakeSource) SpatialSamples(_ context.Context, _ model.TimeRange, _ int, _ string, _ model.SampleKind) ([]model.SpatialSample, error) {
	f.rawCalls++
	return f.samples, nil
}

func (f *fakeSource) SpatialRollup(_ context.Context, date string, _ int, _ string, _ model.SampleKind) ([]model.SpatialSample, error) {
	f.dates = append(f.dates, date)
	if f.onRollup != nil {
		f.onRollup(date)
	}
	return f.rollup[date], nil
}

func (f *fakeSource) OldestDate(context.Context) (string, error) { return f.oldest, nil }

func testLayout() *atomic.Pointer[monitor.Layout] {
	var p atomic.Pointer[monitor.Layout]
	p.Store(monitor.NewLayout([]monitor.Monitor{{ID: 0, Width: 400, Height: 200}}))
	return &p
}

var noon = time.Date(2024, 5, 15, 12, 30, 0, 0, time.Local)

func lastHour() model.TimeRange {
	return model.TimeRange{Start: noon.Add(-time.Hour), End: noon}
}

func TestEmptyRangeGivesZeroGrid(t *testing.T) {
	e := New(&fakeSource{}, testLayout(), Settings{Scale: 0.25, Sigma: 2})

	g, err := e.BuildGrid(context.Background(), Query{Range: lastHour()})
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	if g.Width != 100 || g.Height != 50 {
		t.Errorf("Expected 100x50 grid, got %dx%d", g.Width, g.Height)
	}
	if !g.Empty() {
		t.Error("Expected an all-zero grid")
	}
	if g.Tier != TierSamples {
		t.Errorf("Expected samples tier, got %s", g.Tier)
	}
}

func TestSingleSamplePeaksAtItsCell(t *testing.T) {
	src := &fakeSource{samples: []model.SpatialSample{{X: 200, Y: 100, Weight: 3}}}
	e := New(src, testLayout(), Settings{Scale: 0.25, Sigma: 2})

	g, err := e.BuildGrid(context.Background(), Query{Range: lastHour()})
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	x, y, v := g.Peak()
	if x != 50 || y != 25 || v != 1 {
		t.Errorf("Peak = (%d,%d,%f), want (50,25,1)", x, y, v)
	}
	// Symmetric falloff
	if math.Abs(g.At(48, 25)-g.At(52, 25)) > 1e-12 {
		t.Errorf("Expected symmetric blur, got %f vs %f", g.At(48, 25), g.At(52, 25))
	}
	if g.At(51, 25) >= 1 || g.At(51, 25) <= 0 {
		t.Errorf("Expected neighbour between 0 and 1, got %f", g.At(51, 25))
	}
	for _, c := range g.Cells {
		if c < 0 || c > 1 {
			t.Fatalf("Cell out of [0,1]: %f", c)
		}
	}
}

func TestSamplesOffMonitorAreClipped(t *testing.T) {
	src := &fakeSource{samples: []model.SpatialSample{
		{X: 10, Y: 10, Weight: 1},
		{X: -5, Y: 10, Weight: 2},
		{X: 400, Y: 10, Weight: 2},
		{X: 10, Y: 250, Weight: 2},
	}}
	e := New(src, testLayout(), Settings{Scale: 0.25, Sigma: 1})

	g, err := e.BuildGrid(context.Background(), Query{Range: lastHour()})
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	if g.Samples != 1 || g.Clipped != 6 {
		t.Errorf("Expected 1 kept and 6 clipped, got %f and %f", g.Samples, g.Clipped)
	}
	if x, y, _ := g.Peak(); x != 2 || y != 2 {
		t.Errorf("Expected peak at (2,2), got (%d,%d)", x, y)
	}
}

func TestUnknownMonitor(t *testing.T) {
	e := New(&fakeSource{}, testLayout(), Settings{})
	_, err := e.BuildGrid(context.Background(), Query{Range: lastHour(), Monitor: 3})
	if !errors.Is(err, ErrUnknownMonitor) {
		t.Errorf("Expected ErrUnknownMonitor, got %v", err)
	}
}

func TestLongRangesReadRollup(t *testing.T) {
	convey.Convey("Given a week of rollup data", t, func() {
		src := &fakeSource{rollup: map[string][]model.SpatialSample{
			"2024-05-10": {{X: 100, Y: 100, Weight: 5}},
			"2024-05-14": {{X: 300, Y: 100, Weight: 10}},
		}}
		e := New(src, testLayout(), Settings{Scale: 0.25, Sigma: 2, RawRangeLimit: 24 * time.Hour})

		convey.Convey("When a seven day grid is built", func() {
			g, err := e.BuildGrid(context.Background(), Query{Range: model.LastDays(noon, 7)})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every date is read from the rollup tier", func() {
				convey.So(g.Tier, convey.ShouldEqual, TierRollup)
				convey.So(src.rawCalls, convey.ShouldEqual, 0)
				convey.So(len(src.dates), convey.ShouldEqual, 7)
				convey.So(src.dates[0], convey.ShouldEqual, "2024-05-09")
			})

			convey.Convey("Then the heavier date holds the peak", func() {
				x, y, v := g.Peak()
				convey.So(x, convey.ShouldEqual, 75)
				convey.So(y, convey.ShouldEqual, 25)
				convey.So(v, convey.ShouldEqual, 1)
				convey.So(g.At(25, 25), convey.ShouldAlmostEqual, 0.5, 1e-9)
			})
		})

		convey.Convey("When the range is open it starts at the oldest date", func() {
			src.oldest = "2024-05-13"
			e.now = func() time.Time { return noon }
			g, err := e.BuildGrid(context.Background(), Query{Range: model.AllTime()})
			convey.So(err, convey.ShouldBeNil)
			convey.So(src.dates, convey.ShouldResemble, []string{"2024-05-13", "2024-05-14", "2024-05-15"})
			convey.So(g.Samples, convey.ShouldEqual, 10)
		})
	})
}

func TestCancellationBetweenDates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{}
	src.onRollup = func(string) { cancel() }
	e := New(src, testLayout(), Settings{RawRangeLimit: time.Hour})

	_, err := e.BuildGrid(ctx, Query{Range: model.LastDays(noon, 30)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(src.dates) != 1 {
		t.Errorf("Expected to stop after the first date, read %d", len(src.dates))
	}
}

func TestKernelIsNormalized(t *testing.T) {
	k := kernel(8)
	if len(k) != 49 {
		t.Errorf("Expected radius 24 (49 taps), got %d", len(k))
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Kernel sums to %f", sum)
	}
}

func TestDownsample(t *testing.T) {
	g := newGrid(4, 4, 0, 1)
	g.Cells[1*4+3] = 0.7
	out := g.Downsample(2, 2)
	if out[0][1] != 0.7 || out[0][0] != 0 || out[1][1] != 0 {
		t.Errorf("Unexpected downsample %v", out)
	}
}
