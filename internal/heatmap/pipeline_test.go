package heatmap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/aggregator"
	"github.com/aayushbajaj/activity-telemetry/internal/logging"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/queue"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

// storeClick runs one click through the aggregator into a fresh store.
func storeClick(t *testing.T, x, y int) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "acttel.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	q := queue.New(4)
	q.TryEnqueue(model.MouseClick(noon.Add(-30*time.Minute), "/bin/a", model.ButtonLeft, x, y, 0))
	q.Close()

	a := aggregator.New(q, nil, store,
		aggregator.WithLogger(logging.Discard()),
		aggregator.WithClock(func() time.Time { return noon }))
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return store
}

func TestStoredClickPeaksAtItsCell(t *testing.T) {
	tests := []struct {
		x, y         int
		wantX, wantY int
	}{
		{200, 100, 50, 25},
		{9, 9, 2, 2},
		{119, 63, 29, 15},
		{203, 102, 50, 25},
		{398, 199, 99, 49},
	}
	for _, tt := range tests {
		store := storeClick(t, tt.x, tt.y)
		e := New(store, testLayout(), Settings{Scale: 0.25, Sigma: 2})

		for _, app := range []string{"", "/bin/a"} {
			g, err := e.BuildGrid(context.Background(), Query{Range: lastHour(), App: app})
			if err != nil {
				t.Fatalf("BuildGrid failed: %v", err)
			}
			if g.Samples != 1 {
				t.Errorf("click (%d,%d) app %q: samples = %f, want 1", tt.x, tt.y, app, g.Samples)
			}
			x, y, _ := g.Peak()
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("click (%d,%d) app %q: peak = (%d,%d), want (%d,%d)", tt.x, tt.y, app, x, y, tt.wantX, tt.wantY)
			}
		}
	}
}
