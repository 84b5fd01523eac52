// Package tui is the terminal dashboard over stored activity statistics.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

const refreshInterval = 5 * time.Second

var bars = []rune("▁▂▃▄▅▆▇█")

// Source is the store read by the dashboard.
type Source interface {
	HourlyStats(ctx context.Context, date, scope string) ([]storage.HourlyStats, error)
	DailyStats(ctx context.Context, r model.TimeRange, scope string) ([]storage.DayStats, error)
	AppUsage(ctx context.Context, r model.TimeRange, limit int) ([]model.AppUsageRecord, error)
}

// ThemeStore remembers the dashboard theme between runs.
type ThemeStore interface {
	SetTheme(name string) error
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	store  Source
	themes ThemeStore
	layout *monitor.Layout
	now    func() time.Time

	todayStats  *storage.DayStats
	weekStats   []storage.DayStats
	hourlyStats []storage.HourlyStats
	topApps     []model.AppUsageRecord

	showApps bool
	width    int
	height   int
	err      error
}

type statsMsg struct {
	today  *storage.DayStats
	week   []storage.DayStats
	hourly []storage.HourlyStats
	apps   []model.AppUsageRecord
	err    error
}

type tickMsg time.Time

type themeSavedMsg struct{ err error }

// New creates a dashboard over store.
func New(store Source) Model {
	return Model{
		store:  store,
		layout: monitor.NewLayout(nil),
		now:    time.Now,
	}
}

// WithLayout sets the layout used for distance conversion.
func (m Model) WithLayout(l *monitor.Layout) Model {
	if l != nil {
		m.layout = l
	}
	return m
}

// WithThemeStore persists themes picked with the t key.
func (m Model) WithThemeStore(s ThemeStore) Model {
	m.themes = s
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStats, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchStats() tea.Msg {
	if m.store == nil {
		return statsMsg{err: errors.New("no store configured")}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := m.now()
	today := model.Today(now)
	date := now.Format(model.DateLayout)

	hourly, err := m.store.HourlyStats(ctx, date, model.ScopeGlobal)
	if err != nil {
		return statsMsg{err: err}
	}
	week, err := m.store.DailyStats(ctx, model.LastDays(now, 7), model.ScopeGlobal)
	if err != nil {
		return statsMsg{err: err}
	}
	apps, err := m.store.AppUsage(ctx, today, 5)
	if err != nil {
		return statsMsg{err: err}
	}

	day := storage.DayStats{Date: date}
	for _, h := range hourly {
		day.Add(h.Totals)
	}
	return statsMsg{today: &day, week: week, hourly: hourly, apps: apps}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetchStats
		case "a":
			m.showApps = !m.showApps
		case "t":
			name := nextTheme(CurrentTheme.Name)
			SetTheme(name)
			if m.themes != nil {
				return m, m.saveTheme(name)
			}
		}
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("save theme: %w", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.todayStats = msg.today
		m.weekStats = msg.week
		m.hourlyStats = msg.hourly
		m.topApps = msg.apps
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStats, tick())
	}
	return m, nil
}

func (m Model) saveTheme(name string) tea.Cmd {
	themes := m.themes
	return func() tea.Msg {
		return themeSavedMsg{err: themes.SetTheme(name)}
	}
}

// nextTheme returns the key of the theme after the one displayed as current.
func nextTheme(current string) string {
	for i, key := range ThemeNames {
		if Themes[key].Name == current {
			return ThemeNames[(i+1)%len(ThemeNames)]
		}
	}
	return ThemeNames[0]
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + mutedStyle.Render("Press q to quit.")
	}
	if m.todayStats == nil {
		return "Loading..."
	}

	t := m.todayStats
	today := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Today"),
		stat("Keystrokes", formatNumber(t.Keys)),
		stat("Clicks", formatNumber(t.Clicks)),
		stat("Scrolls", formatNumber(t.Scrolls)),
		stat("Distance", fmt.Sprintf("%.1f m", m.layout.PixelsToMeters(t.DistancePx))),
	)

	sections := []string{
		titleStyle.Render("Activity Telemetry"),
		boxStyle.Render(today),
		boxStyle.Render(headerStyle.Render("By Hour") + "\n" + m.renderHourlyGraph()),
		boxStyle.Render(headerStyle.Render("This Week") + "\n" + m.renderWeeklyGraph()),
	}
	if m.showApps {
		sections = append(sections, boxStyle.Render(headerStyle.Render("Top Apps")+"\n"+m.renderApps()))
	}
	sections = append(sections, mutedStyle.Render("r refresh  a apps  t theme ("+CurrentTheme.Name+")  q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func stat(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value)
}

// barFor maps v onto the bar ramp. Non-zero values get at least the second
// bar so they stay visible next to large peaks.
func barFor(v, max int64) rune {
	if v <= 0 || max <= 0 {
		return bars[0]
	}
	idx := int(float64(v) / float64(max) * float64(len(bars)-1))
	if idx < 1 {
		idx = 1
	}
	return bars[idx]
}

func (m Model) renderHourlyGraph() string {
	if len(m.hourlyStats) == 0 {
		return "No data"
	}
	var hours [24]int64
	var peak int64
	for _, h := range m.hourlyStats {
		if h.Hour < 0 || h.Hour > 23 {
			continue
		}
		hours[h.Hour] += h.Keys
		peak = max(peak, hours[h.Hour])
	}
	if peak == 0 {
		return "No activity today"
	}

	var graph strings.Builder
	for _, v := range hours {
		graph.WriteRune(barFor(v, peak))
		graph.WriteRune(barFor(v, peak))
	}
	labels := "0           6           12          18        23"
	return barStyle.Render(graph.String()) + "\n" + mutedStyle.Render(labels)
}

func (m Model) renderWeeklyGraph() string {
	if len(m.weekStats) == 0 {
		return "No data"
	}
	var peak int64
	for _, d := range m.weekStats {
		peak = max(peak, d.Keys)
	}
	if peak == 0 {
		return "No activity this week"
	}

	var lines []string
	for _, d := range m.weekStats {
		label := d.Date
		if day, err := time.Parse(model.DateLayout, d.Date); err == nil {
			label = day.Format("Mon")
		}
		width := int(float64(d.Keys) / float64(peak) * 30)
		bar := strings.Repeat(string(bars[len(bars)-1]), width)
		if d.Keys > 0 && width == 0 {
			bar = string(bars[1])
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-10s", label))+
			barStyle.Render(bar)+" "+valueStyle.Render(formatNumber(d.Keys)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderApps() string {
	if len(m.topApps) == 0 {
		return "No apps yet"
	}
	var lines []string
	for _, a := range m.topApps {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-24s", truncate(filepath.Base(a.App), 24)))+
			valueStyle.Render(fmt.Sprintf("%8s keys  %s", formatNumber(a.Keys), formatSeconds(a.ForegroundSeconds))))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatSeconds(secs float64) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func formatNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
