package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

func newStatsCmd(g *globals) *cobra.Command {
	var rangeName, app string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show activity totals",
		Long: `Show keystrokes, clicks, scrolls and pointer distance.

For today the totals are broken down by hour; longer ranges are broken down
by day. --app limits the numbers to one application (fuzzy matched).`,
		Example: `  acttel stats
  acttel stats --range week
  acttel stats --range month --app code`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.parseRange(rangeName)
			if err != nil {
				return err
			}
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			layout := layoutFor(cfg)

			appPath, err := resolveApp(ctx, st, app)
			if err != nil {
				return err
			}
			scope := scopeOf(appPath)

			totals, err := st.Totals(ctx, r, scope)
			if err != nil {
				return err
			}
			title := "All applications"
			if appPath != "" {
				title = appPath
			}
			fmt.Fprintf(out, "%s, %s\n", title, rangeName)
			fmt.Fprintf(out, "  Keystrokes: %s (letters %s, modifiers %s, special %s)\n",
				comma(totals.Keys), comma(totals.Letters), comma(totals.Modifiers), comma(totals.Special))
			fmt.Fprintf(out, "  Clicks:     %s\n", comma(totals.Clicks))
			fmt.Fprintf(out, "  Scrolls:    %s (%.0f steps)\n", comma(totals.Scrolls), totals.ScrollSteps)
			fmt.Fprintf(out, "  Distance:   %.1f m (%.0f ft)\n",
				layout.PixelsToMeters(totals.DistancePx), layout.PixelsToFeet(totals.DistancePx))

			var rows [][]string
			if rangeName == "today" || rangeName == "day" {
				hours, err := st.HourlyStats(ctx, g.now().Format(model.DateLayout), scope)
				if err != nil {
					return err
				}
				for _, h := range hours {
					if h.Keys == 0 && h.Clicks == 0 && h.Scrolls == 0 {
						continue
					}
					rows = append(rows, []string{fmt.Sprintf("%02d:00", h.Hour), comma(h.Keys), comma(h.Clicks), comma(h.Scrolls),
						fmt.Sprintf("%.1f", layout.PixelsToMeters(h.DistancePx))})
				}
				if len(rows) > 0 {
					renderTable(out, []string{"Hour", "Keys", "Clicks", "Scrolls", "Distance (m)"}, rows)
				}
				return nil
			}

			days, err := st.DailyStats(ctx, r, scope)
			if err != nil {
				return err
			}
			for _, d := range days {
				rows = append(rows, []string{d.Date, comma(d.Keys), comma(d.Clicks), comma(d.Scrolls),
					fmt.Sprintf("%.1f", layout.PixelsToMeters(d.DistancePx))})
			}
			if len(rows) > 0 {
				renderTable(out, []string{"Date", "Keys", "Clicks", "Scrolls", "Distance (m)"}, rows)
			}
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "today")
	cmd.Flags().StringVarP(&app, "app", "a", "", "limit to one application")
	return cmd
}

func newKeysCmd(g *globals) *cobra.Command {
	var (
		rangeName, app string
		top            int
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show the most pressed keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.parseRange(rangeName)
			if err != nil {
				return err
			}
			_, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmd.Context()

			appPath, err := resolveApp(ctx, st, app)
			if err != nil {
				return err
			}
			counts, err := st.KeyCounts(ctx, r, scopeOf(appPath))
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keys recorded in range.")
				return nil
			}

			type kv struct {
				key string
				n   int64
			}
			sorted := make([]kv, 0, len(counts))
			for k, n := range counts {
				sorted = append(sorted, kv{k, n})
			}
			sort.Slice(sorted, func(i, j int) bool {
				if sorted[i].n != sorted[j].n {
					return sorted[i].n > sorted[j].n
				}
				return sorted[i].key < sorted[j].key
			})
			if top > 0 && len(sorted) > top {
				sorted = sorted[:top]
			}

			total := counts.Total()
			rows := make([][]string, 0, len(sorted))
			for _, e := range sorted {
				rows = append(rows, []string{e.key, comma(e.n), fmt.Sprintf("%.1f%%", float64(e.n)/float64(total)*100)})
			}
			renderTable(cmd.OutOrStdout(), []string{"Key", "Count", "Share"}, rows)
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "today")
	cmd.Flags().StringVarP(&app, "app", "a", "", "limit to one application")
	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of keys to show (0 for all)")
	return cmd
}

func newAppsCmd(g *globals) *cobra.Command {
	var (
		rangeName string
		limit     int
		byGroup   bool
	)

	cmd := &cobra.Command{
		Use:   "apps [filter]",
		Short: "Show per-application usage",
		Long: `Show per-application usage ordered by foreground time. An optional filter
fuzzy-matches executable paths. --by-group sums usage per application group
instead (see 'acttel group').`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.parseRange(rangeName)
			if err != nil {
				return err
			}
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			layout := layoutFor(cfg)

			if byGroup {
				groups, err := st.GroupedUsage(cmd.Context(), r)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(groups))
				for _, u := range groups {
					rows = append(rows, []string{
						string(u.Group), fmt.Sprint(u.Apps), comma(u.Keys), comma(u.Clicks), comma(u.Scrolls),
						fmt.Sprintf("%.1f", layout.PixelsToMeters(u.DistancePx)), formatSeconds(u.ForegroundSeconds),
					})
				}
				renderTable(cmd.OutOrStdout(), []string{"Group", "Apps", "Keys", "Clicks", "Scrolls", "Distance (m)", "Foreground"}, rows)
				return nil
			}

			usage, err := st.AppUsage(cmd.Context(), r, 0)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				usage = filterApps(args[0], usage)
			}
			if limit > 0 && len(usage) > limit {
				usage = usage[:limit]
			}
			if len(usage) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No applications recorded in range.")
				return nil
			}

			rows := make([][]string, 0, len(usage))
			for _, u := range usage {
				rows = append(rows, []string{
					filepath.Base(u.App), comma(u.Keys), comma(u.Clicks), comma(u.Scrolls),
					fmt.Sprintf("%.1f", layout.PixelsToMeters(u.DistancePx)), formatSeconds(u.ForegroundSeconds),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"App", "Keys", "Clicks", "Scrolls", "Distance (m)", "Foreground"}, rows)
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "today")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of apps to show (0 for all)")
	cmd.Flags().BoolVarP(&byGroup, "by-group", "g", false, "sum usage per application group")
	return cmd
}

// filterApps keeps records whose path fuzzy-matches query, best first.
func filterApps(query string, usage []model.AppUsageRecord) []model.AppUsageRecord {
	paths := make([]string, len(usage))
	for i, u := range usage {
		paths[i] = u.App
	}
	matches := fuzzy.Find(query, paths)
	out := make([]model.AppUsageRecord, 0, len(matches))
	for _, m := range matches {
		out = append(out, usage[m.Index])
	}
	return out
}

func newScreenTimeCmd(g *globals) *cobra.Command {
	var rangeName string

	cmd := &cobra.Command{
		Use:   "screentime",
		Short: "Show foreground time per application",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.parseRange(rangeName)
			if err != nil {
				return err
			}
			_, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			times, err := st.ScreenTime(cmd.Context(), r)
			if err != nil {
				return err
			}
			if len(times) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No foreground time recorded in range.")
				return nil
			}

			var total float64
			rows := make([][]string, 0, len(times)+1)
			for _, t := range times {
				total += t.Seconds
				rows = append(rows, []string{filepath.Base(t.App), formatSeconds(t.Seconds)})
			}
			rows = append(rows, []string{"total", formatSeconds(total)})
			renderTable(cmd.OutOrStdout(), []string{"App", "Time"}, rows)
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "today")
	return cmd
}
