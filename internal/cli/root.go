// Package cli holds the acttel command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/config"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	dbPath     string
	now        func() time.Time
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globals{now: time.Now})
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:   "acttel",
		Short: "Local keyboard and mouse activity telemetry",
		Long: `acttel counts keystrokes, clicks, scrolls and pointer travel per
application and keeps them in a local sqlite time-series. Keystroke content
is never recorded and nothing leaves the machine.

Start the collector with 'acttel run' and query it with the other commands.`,
		Example: `  # Start collecting in the foreground
  acttel run

  # Today's totals and the busiest apps this week
  acttel stats
  acttel apps --range week

  # Click density on the primary monitor
  acttel heatmap --range week`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SuggestionsMinimumDistance = 2

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: $ACTTEL_CONFIG or ~/.acttel/config.yaml)")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "database path (overrides db_path)")

	root.AddCommand(
		newRunCmd(g),
		newStatusCmd(g),
		newStatsCmd(g),
		newKeysCmd(g),
		newAppsCmd(g),
		newScreenTimeCmd(g),
		newTrendsCmd(g),
		newGroupCmd(g),
		newHeatmapCmd(g),
		newPruneCmd(g),
		newRetentionCmd(g),
		newCaptureCmd(g),
		newExportCmd(g),
		newDashboardCmd(g),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves the configuration and applies flag overrides.
func (g *globals) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
	}
	return cfg, nil
}

// openStore loads the config and opens its database.
func (g *globals) openStore() (*config.Config, *storage.Store, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, st, nil
}

// addRangeFlag registers --range on cmd.
func addRangeFlag(cmd *cobra.Command, target *string, def string) {
	cmd.Flags().StringVarP(target, "range", "r", def, "time range: today, week, month, year or all")
}

func (g *globals) parseRange(name string) (model.TimeRange, error) {
	return model.ParseRange(name, g.now())
}

// resolveApp maps a user-supplied name to a stored executable path. Exact
// matches win; otherwise the best fuzzy match is used. An empty query
// resolves to "".
func resolveApp(ctx context.Context, st *storage.Store, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	apps, err := st.Apps(ctx)
	if err != nil {
		return "", err
	}
	return matchApp(query, apps)
}

// scopeOf returns the aggregation scope of a resolved app.
func scopeOf(app string) string {
	if app == "" {
		return model.ScopeGlobal
	}
	return model.AppScope(app)
}

func matchApp(query string, apps []string) (string, error) {
	for _, a := range apps {
		if a == query {
			return a, nil
		}
	}
	matches := fuzzy.Find(query, apps)
	if len(matches) == 0 {
		return "", fmt.Errorf("no recorded application matches %q", query)
	}
	return matches[0].Str, nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func comma(n int64) string { return humanize.Comma(n) }

func formatSeconds(secs float64) string {
	d := (time.Duration(secs) * time.Second).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm %02ds", m, int(d.Seconds())%60)
}
