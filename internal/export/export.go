// Package export writes stored statistics as CSV or JSON.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

// Version is written into JSON exports.
const Version = "1.0"

// Source is the read side of the store used for exports.
type Source interface {
	DailyStats(ctx context.Context, r model.TimeRange, scope string) ([]storage.DayStats, error)
	AppUsage(ctx context.Context, r model.TimeRange, limit int) ([]model.AppUsageRecord, error)
	KeyCounts(ctx context.Context, r model.TimeRange, scope string) (model.KeyCounter, error)
	ScreenTime(ctx context.Context, r model.TimeRange) ([]storage.AppTime, error)
	GroupedUsage(ctx context.Context, r model.TimeRange) ([]storage.GroupUsage, error)
	DayOfWeekAverages(ctx context.Context, scope string) ([]storage.WeekdayAverage, error)
	HourOfDayAverages(ctx context.Context, scope string) ([]storage.HourAverage, error)
}

// Exporter renders store contents. Distances are converted to meters
// through the monitor layout.
type Exporter struct {
	src    Source
	layout *monitor.Layout
	now    func() time.Time
}

// New creates an exporter. A nil layout uses the default monitor.
func New(src Source, layout *monitor.Layout) *Exporter {
	if layout == nil {
		layout = monitor.NewLayout(nil)
	}
	return &Exporter{src: src, layout: layout, now: time.Now}
}

// DailyRow is one exported day.
type DailyRow struct {
	Date           string  `json:"date"`
	Keystrokes     int64   `json:"keystrokes"`
	MouseClicks    int64   `json:"mouse_clicks"`
	MouseDistanceM float64 `json:"mouse_distance"`
	ScrollSteps    float64 `json:"scroll_distance"`
}

// AppRow is one exported application.
type AppRow struct {
	App        string  `json:"app_name"`
	Keystrokes int64   `json:"keystrokes"`
	Clicks     int64   `json:"clicks"`
	Scrolls    int64   `json:"scrolls"`
	DistanceM  float64 `json:"distance"`
}

// KeyRow is one key and its press count.
type KeyRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ScreenTimeRow is foreground time of one application.
type ScreenTimeRow struct {
	App          string  `json:"app_name"`
	TotalSeconds float64 `json:"total_seconds"`
}

// GroupRow is usage summed over one application group.
type GroupRow struct {
	Group        string  `json:"group"`
	Apps         int     `json:"apps"`
	Keystrokes   int64   `json:"keystrokes"`
	Clicks       int64   `json:"clicks"`
	Scrolls      int64   `json:"scrolls"`
	DistanceM    float64 `json:"distance"`
	TotalSeconds float64 `json:"total_seconds"`
}

// AverageRow is mean activity in one weekday or hour-of-day slot. Periods
// counts the days or hours that had data.
type AverageRow struct {
	Label      string  `json:"label"`
	Periods    int     `json:"periods"`
	Keystrokes float64 `json:"keystrokes"`
	Clicks     float64 `json:"clicks"`
	Scrolls    float64 `json:"scrolls"`
	DistanceM  float64 `json:"distance"`
}

// Info describes an export.
type Info struct {
	ExportedAt string  `json:"exported_at"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Version    string  `json:"version"`
}

// Document is the JSON export layout.
type Document struct {
	Info       Info            `json:"export_info"`
	Daily      []DailyRow      `json:"daily_stats"`
	Apps       []AppRow        `json:"app_stats"`
	Keys       []KeyRow        `json:"keyboard_heatmap"`
	ScreenTime []ScreenTimeRow `json:"screen_time"`
	Groups     []GroupRow      `json:"app_groups"`
	Weekdays   []AverageRow    `json:"day_of_week_averages"`
	Hours      []AverageRow    `json:"hour_of_day_averages"`
}

// Daily returns per-day rows, oldest first.
func (x *Exporter) Daily(ctx context.Context, r model.TimeRange) ([]DailyRow, error) {
	days, err := x.src.DailyStats(ctx, r, model.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	out := make([]DailyRow, 0, len(days))
	for _, d := range days {
		out = append(out, DailyRow{
			Date:           d.Date,
			Keystrokes:     d.Keys,
			MouseClicks:    d.Clicks,
			MouseDistanceM: x.layout.PixelsToMeters(d.DistancePx),
			ScrollSteps:    d.ScrollSteps,
		})
	}
	return out, nil
}

// Apps returns per-application rows, most keystrokes first.
func (x *Exporter) Apps(ctx context.Context, r model.TimeRange) ([]AppRow, error) {
	usage, err := x.src.AppUsage(ctx, r, 0)
	if err != nil {
		return nil, err
	}
	out := make([]AppRow, 0, len(usage))
	for _, u := range usage {
		out = append(out, AppRow{
			App:        u.App,
			Keystrokes: u.Keys,
			Clicks:     u.Clicks,
			Scrolls:    u.Scrolls,
			DistanceM:  x.layout.PixelsToMeters(u.DistancePx),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Keystrokes > out[j].Keystrokes })
	return out, nil
}

// Keys returns key counts, most pressed first.
func (x *Exporter) Keys(ctx context.Context, r model.TimeRange) ([]KeyRow, error) {
	counts, err := x.src.KeyCounts(ctx, r, model.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	out := make([]KeyRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, KeyRow{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// ScreenTime returns foreground time per application, longest first.
func (x *Exporter) ScreenTime(ctx context.Context, r model.TimeRange) ([]ScreenTimeRow, error) {
	times, err := x.src.ScreenTime(ctx, r)
	if err != nil {
		return nil, err
	}
	out := make([]ScreenTimeRow, 0, len(times))
	for _, t := range times {
		out = append(out, ScreenTimeRow{App: t.App, TotalSeconds: t.Seconds})
	}
	return out, nil
}

// Groups returns usage per application group in display order.
func (x *Exporter) Groups(ctx context.Context, r model.TimeRange) ([]GroupRow, error) {
	groups, err := x.src.GroupedUsage(ctx, r)
	if err != nil {
		return nil, err
	}
	out := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupRow{
			Group:        string(g.Group),
			Apps:         g.Apps,
			Keystrokes:   g.Keys,
			Clicks:       g.Clicks,
			Scrolls:      g.Scrolls,
			DistanceM:    x.layout.PixelsToMeters(g.DistancePx),
			TotalSeconds: g.ForegroundSeconds,
		})
	}
	return out, nil
}

// Weekdays returns global daily averages per weekday, Sunday first. Averages
// cover all history; the export range does not apply.
func (x *Exporter) Weekdays(ctx context.Context) ([]AverageRow, error) {
	days, err := x.src.DayOfWeekAverages(ctx, model.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	out := make([]AverageRow, 0, len(days))
	for _, d := range days {
		out = append(out, AverageRow{
			Label:      d.Weekday.String(),
			Periods:    d.Days,
			Keystrokes: d.Keys,
			Clicks:     d.Clicks,
			Scrolls:    d.Scrolls,
			DistanceM:  x.layout.PixelsToMeters(d.DistancePx),
		})
	}
	return out, nil
}

// Hours returns global averages per hour of the day over all history.
func (x *Exporter) Hours(ctx context.Context) ([]AverageRow, error) {
	hours, err := x.src.HourOfDayAverages(ctx, model.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	out := make([]AverageRow, 0, len(hours))
	for _, h := range hours {
		out = append(out, AverageRow{
			Label:      fmt.Sprintf("%02d:00", h.Hour),
			Periods:    h.Samples,
			Keystrokes: h.Keys,
			Clicks:     h.Clicks,
			Scrolls:    h.Scrolls,
			DistanceM:  x.layout.PixelsToMeters(h.DistancePx),
		})
	}
	return out, nil
}

// DailyCSV writes daily rows as CSV.
func (x *Exporter) DailyCSV(ctx context.Context, w io.Writer, r model.TimeRange) error {
	rows, err := x.Daily(ctx, r)
	if err != nil {
		return err
	}
	return writeCSV(w, []string{"Date", "Keystrokes", "Mouse Clicks", "Mouse Distance (m)", "Scroll Distance"}, len(rows),
		func(i int) []string {
			d := rows[i]
			return []string{d.Date, itoa(d.Keystrokes), itoa(d.MouseClicks), ftoa(d.MouseDistanceM), ftoa(d.ScrollSteps)}
		})
}

// AppsCSV writes application rows as CSV.
func (x *Exporter) AppsCSV(ctx context.Context, w io.Writer, r model.TimeRange) error {
	rows, err := x.Apps(ctx, r)
	if err != nil {
		return err
	}
	return writeCSV(w, []string{"Application", "Keystrokes", "Clicks", "Scrolls", "Distance (m)"}, len(rows),
		func(i int) []string {
			a := rows[i]
			return []string{a.App, itoa(a.Keystrokes), itoa(a.Clicks), itoa(a.Scrolls), ftoa(a.DistanceM)}
		})
}

// KeysCSV writes key counts as CSV.
func (x *Exporter) KeysCSV(ctx context.Context, w io.Writer, r model.TimeRange) error {
	rows, err := x.Keys(ctx, r)
	if err != nil {
		return err
	}
	return writeCSV(w, []string{"Key", "Press Count"}, len(rows),
		func(i int) []string { return []string{rows[i].Key, itoa(rows[i].Count)} })
}

// ScreenTimeCSV writes foreground time as CSV.
func (x *Exporter) ScreenTimeCSV(ctx context.Context, w io.Writer, r model.TimeRange) error {
	rows, err := x.ScreenTime(ctx, r)
	if err != nil {
		return err
	}
	return writeCSV(w, []string{"Application", "Total Seconds", "Formatted Time"}, len(rows),
		func(i int) []string {
			s := rows[i]
			return []string{s.App, ftoa(s.TotalSeconds), FormatDuration(s.TotalSeconds)}
		})
}

// GroupsCSV writes group rows as CSV.
func (x *Exporter) GroupsCSV(ctx context.Context, w io.Writer, r model.TimeRange) error {
	rows, err := x.Groups(ctx, r)
	if err != nil {
		return err
	}
	return writeCSV(w, []string{"Group", "Applications", "Keystrokes", "Clicks", "Scrolls", "Distance (m)", "Total Seconds"}, len(rows),
		func(i int) []string {
			g := rows[i]
			return []string{g.Group, strconv.Itoa(g.Apps), itoa(g.Keystrokes), itoa(g.Clicks), itoa(g.Scrolls),
				ftoa(g.DistanceM), ftoa(g.TotalSeconds)}
		})
}

// WeekdaysCSV writes weekday averages as CSV. The range is ignored.
func (x *Exporter) WeekdaysCSV(ctx context.Context, w io.Writer, _ model.TimeRange) error {
	rows, err := x.Weekdays(ctx)
	if err != nil {
		return err
	}
	return averagesCSV(w, "Weekday", "Days", rows)
}

// HoursCSV writes hour-of-day averages as CSV. The range is ignored.
func (x *Exporter) HoursCSV(ctx context.Context, w io.Writer, _ model.TimeRange) error {
	rows, err := x.Hours(ctx)
	if err != nil {
		return err
	}
	return averagesCSV(w, "Hour", "Hours", rows)
}

func averagesCSV(w io.Writer, label, periods string, rows []AverageRow) error {
	return writeCSV(w, []string{label, periods, "Keystrokes", "Clicks", "Scrolls", "Distance (m)"}, len(rows),
		func(i int) []string {
			a := rows[i]
			return []string{a.Label, strconv.Itoa(a.Periods), ftoa(a.Keystrokes), ftoa(a.Clicks), ftoa(a.Scrolls), ftoa(a.DistanceM)}
		})
}

// JSON writes every dataset into one document.
func (x *Exporter) JSON(ctx context.Context, w io.Writer, r model.TimeRange) error {
	doc := Document{Info: Info{
		ExportedAt: x.now().Format(time.RFC3339),
		Version:    Version,
	}}
	if r.Bounded() {
		from, to := r.DateBounds()
		doc.Info.StartDate, doc.Info.EndDate = &from, &to
	}

	var err error
	if doc.Daily, err = x.Daily(ctx, r); err != nil {
		return err
	}
	if doc.Apps, err = x.Apps(ctx, r); err != nil {
		return err
	}
	if doc.Keys, err = x.Keys(ctx, r); err != nil {
		return err
	}
	if doc.ScreenTime, err = x.ScreenTime(ctx, r); err != nil {
		return err
	}
	if doc.Groups, err = x.Groups(ctx, r); err != nil {
		return err
	}
	if doc.Weekdays, err = x.Weekdays(ctx); err != nil {
		return err
	}
	if doc.Hours, err = x.Hours(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// All writes every CSV dataset into dir with a shared timestamp suffix and
// returns the dataset to path mapping.
func (x *Exporter) All(ctx context.Context, dir string, r model.TimeRange) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	stamp := x.now().Format("20060102_150405")

	sets := []struct {
		name  string
		write func(context.Context, io.Writer, model.TimeRange) error
	}{
		{"daily_stats", x.DailyCSV},
		{"app_stats", x.AppsCSV},
		{"key_counts", x.KeysCSV},
		{"screen_time", x.ScreenTimeCSV},
		{"app_groups", x.GroupsCSV},
		{"day_of_week_averages", x.WeekdaysCSV},
		{"hour_of_day_averages", x.HoursCSV},
	}

	out := make(map[string]string, len(sets))
	for _, s := range sets {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", s.name, stamp))
		if err := writeFile(path, func(w io.Writer) error { return s.write(ctx, w, r) }); err != nil {
			return out, fmt.Errorf("export %s: %w", s.name, err)
		}
		out[s.name] = path
	}
	return out, nil
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(secs float64) string {
	total := int64(secs)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
