package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/export"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

var noon = time.Date(2024, 5, 15, 12, 30, 0, 0, time.Local)

const (
	editor  = "/Applications/Editor.app/Contents/MacOS/Editor"
	browser = "/Applications/Browser.app/Contents/MacOS/Browser"
)

// seedStore creates a database with one day of editor and browser activity
// plus an old day that falls outside a short retention window.
func seedStore(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ACTTEL_CONFIG", "")

	db := filepath.Join(home, "acttel.db")
	st, err := storage.Open(db)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	add := func(id string, at time.Time, app string, keys map[string]int64, clicks int64, fg float64) {
		d := model.NewDelta(id, at)
		date := at.Format(model.DateLayout)
		for _, scope := range []string{model.ScopeGlobal, app} {
			b := model.BucketFor(at, scope)
			for k, n := range keys {
				d.KeyCounter(b)[k] += n
				d.Bucket(b).Keys += n
			}
			d.Bucket(b).Clicks += clicks
			for i := int64(0); i < clicks; i++ {
				d.Samples[model.SampleKey{Bucket: b, Kind: model.SampleClick, X: 960, Y: 540}]++
				d.Rollup[model.RollupKey{Date: date, Scope: scope, Kind: model.SampleClick, X: 960, Y: 540}]++
			}
		}
		rec := d.App(date, app)
		for _, n := range keys {
			rec.Keys += n
		}
		rec.Clicks += clicks
		rec.ForegroundSeconds += fg
		if err := st.Merge(context.Background(), d); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
	}

	add("editor", noon, editor, map[string]int64{"e": 60, "Space": 40}, 3, 3600)
	add("browser", noon.Add(-time.Hour), browser, map[string]int64{"j": 50}, 10, 1800)
	add("old", noon.AddDate(0, 0, -20), editor, map[string]int64{"x": 7}, 0, 60)
	return db
}

func runCmd(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&globals{now: func() time.Time { return noon }})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--db", db}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestStatsToday(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	for _, want := range []string{"Keystrokes: 150", "Clicks:     13", "11:00", "12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatsForOneApp(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "stats", "--range", "week", "--app", "browser")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, browser) || !strings.Contains(out, "Keystrokes: 50") {
		t.Errorf("Expected browser totals, got:\n%s", out)
	}
}

func TestStatsRejectsBadRange(t *testing.T) {
	db := seedStore(t)
	if _, err := runCmd(t, db, "stats", "--range", "fortnight"); err == nil {
		t.Error("Expected an error for an unknown range")
	}
}

func TestKeysTop(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "keys", "--top", "2")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if !strings.Contains(out, "e") || !strings.Contains(out, "40.0%") {
		t.Errorf("Expected e with a 40%% share, got:\n%s", out)
	}
	if strings.Contains(out, "Space") {
		t.Errorf("Expected --top 2 to cut Space, got:\n%s", out)
	}
}

func TestAppsFuzzyFilter(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "apps", "edtr")
	if err != nil {
		t.Fatalf("apps failed: %v", err)
	}
	if !strings.Contains(out, "Editor") || strings.Contains(out, "Browser") {
		t.Errorf("Expected only the editor, got:\n%s", out)
	}
	if !strings.Contains(out, "1h 00m") {
		t.Errorf("Expected foreground time, got:\n%s", out)
	}
}

func TestMatchApp(t *testing.T) {
	apps := []string{editor, browser}
	tests := []struct {
		query, want string
		wantErr     bool
	}{
		{editor, editor, false},
		{"brws", browser, false},
		{"zzz", "", true},
	}
	for _, tt := range tests {
		got, err := matchApp(tt.query, apps)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("matchApp(%q) = %q, %v", tt.query, got, err)
		}
	}
}

func TestScreenTime(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "screentime")
	if err != nil {
		t.Fatalf("screentime failed: %v", err)
	}
	if !strings.Contains(out, "Editor") || !strings.Contains(out, "1h 30m") {
		t.Errorf("Expected per-app time and a 1h30m total, got:\n%s", out)
	}
}

func TestHeatmapPreview(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "heatmap", "--cols", "40")
	if err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	if !strings.Contains(out, "█") || !strings.Contains(out, "13 samples") {
		t.Errorf("Expected a drawn grid with 13 samples, got:\n%s", out)
	}

	if _, err := runCmd(t, db, "heatmap", "--kind", "scroll"); err == nil {
		t.Error("Expected an error for an invalid kind")
	}
	if _, err := runCmd(t, db, "heatmap", "--monitor", "7"); err == nil {
		t.Error("Expected an error for an unknown monitor")
	}
}

func TestRetentionAndPrune(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "retention", "7")
	if err != nil {
		t.Fatalf("retention failed: %v", err)
	}
	if !strings.Contains(out, "7 days (keeping data from 2024-05-08)") {
		t.Errorf("Unexpected retention output:\n%s", out)
	}

	out, err = runCmd(t, db, "prune")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !strings.Contains(out, "dated before 2024-05-08") {
		t.Errorf("Unexpected prune output:\n%s", out)
	}

	out, _ = runCmd(t, db, "stats", "--range", "all")
	if !strings.Contains(out, "Keystrokes: 150") {
		t.Errorf("Expected the old day to be gone, got:\n%s", out)
	}

	out, err = runCmd(t, db, "retention", "forever")
	if err != nil || !strings.Contains(out, "forever") {
		t.Errorf("Expected forever retention, got %v:\n%s", err, out)
	}
	if _, err := runCmd(t, db, "retention", "-3"); err == nil {
		t.Error("Expected an error for negative retention")
	}
}

func TestCaptureToggle(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "capture", "off")
	if err != nil || !strings.Contains(out, "Capture: off") {
		t.Fatalf("Expected capture off, got %v:\n%s", err, out)
	}
	out, _ = runCmd(t, db, "capture")
	if !strings.Contains(out, "Capture: off") {
		t.Errorf("Expected the setting to persist, got:\n%s", out)
	}
	if _, err := runCmd(t, db, "capture", "maybe"); err == nil {
		t.Error("Expected an error for an invalid argument")
	}
}

func TestExportJSON(t *testing.T) {
	db := seedStore(t)
	path := filepath.Join(t.TempDir(), "out.json")

	if _, err := runCmd(t, db, "export", "--format", "json", "--out", path); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(doc.Daily) != 2 || len(doc.Apps) != 2 {
		t.Errorf("Expected 2 days and 2 apps, got %d and %d", len(doc.Daily), len(doc.Apps))
	}
}

func TestExportCSVDatasets(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "export", "--dataset", "keys")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(out, "Key,Press Count") {
		t.Errorf("Expected CSV on stdout, got:\n%s", out)
	}

	dir := filepath.Join(t.TempDir(), "csv")
	out, err = runCmd(t, db, "export", "--out", dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 7 {
		t.Errorf("Expected 7 files in %s, got %d:\n%s", dir, len(entries), out)
	}

	if _, err := runCmd(t, db, "export", "--format", "xml"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestTrends(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "trends")
	if err != nil {
		t.Fatalf("trends failed: %v", err)
	}
	for _, want := range []string{"daily average by weekday", "Wednesday", "150", "Thursday", "11:00", "12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	out, err = runCmd(t, db, "trends", "--app", "editor")
	if err != nil {
		t.Fatalf("trends --app failed: %v", err)
	}
	if !strings.Contains(out, editor) || !strings.Contains(out, "12:00") {
		t.Errorf("Expected editor trends, got:\n%s", out)
	}
	if strings.Contains(out, "11:00") {
		t.Errorf("Expected no browser hour in editor trends:\n%s", out)
	}
}

func TestGroupAssignAndBreakdown(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "group")
	if err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if !strings.Contains(out, "No applications are grouped") {
		t.Errorf("Expected empty listing, got:\n%s", out)
	}

	out, err = runCmd(t, db, "group", "editor", "productivity")
	if err != nil {
		t.Fatalf("group editor failed: %v", err)
	}
	if !strings.Contains(out, editor+" is now productivity") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runCmd(t, db, "group")
	if err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if !strings.Contains(out, "productivity") || !strings.Contains(out, "Editor") {
		t.Errorf("Expected editor listed as productivity:\n%s", out)
	}

	out, err = runCmd(t, db, "apps", "--by-group")
	if err != nil {
		t.Fatalf("apps --by-group failed: %v", err)
	}
	for _, want := range []string{"productivity", "other", "unassigned", "1h 00m", "30m 00s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	out, err = runCmd(t, db, "export", "--dataset", "groups")
	if err != nil {
		t.Fatalf("export groups failed: %v", err)
	}
	if !strings.Contains(out, "productivity,1,107,3,") {
		t.Errorf("Expected editor counted under productivity:\n%s", out)
	}

	if _, err := runCmd(t, db, "group", "editor", "games"); !errors.Is(err, model.ErrUnknownGroup) {
		t.Errorf("Expected ErrUnknownGroup, got %v", err)
	}
	if _, err := runCmd(t, db, "group", "editor"); err == nil {
		t.Error("Expected an error for a missing group")
	}
}

func TestStatusWithoutCollector(t *testing.T) {
	db := seedStore(t)

	out, err := runCmd(t, db, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"never started", "Oldest:    2024-04-25", "Retention: 365 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0m 00s"},
		{95, "1m 35s"},
		{3600, "1h 00m"},
		{5430, "1h 30m"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.secs); got != tt.want {
			t.Errorf("formatSeconds(%f) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
