package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

func newTrendsCmd(g *globals) *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show average activity per weekday and hour of day",
		Long: `Show average activity per weekday and per hour of the day over all
recorded history. Only days and hours with activity count towards an average.`,
		Example: `  acttel trends
  acttel trends --app code`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			days, err := st.DayOfWeekAverages(ctx, scope)
			if err != nil {
				return err
			}
			hours, err := st.HourOfDayAverages(ctx, scope)
			if err != nil {
				return err
			}

			title := "All applications"
			if appPath != "" {
				title = appPath
			}
			fmt.Fprintf(out, "%s, daily average by weekday\n", title)
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{d.Weekday.String(), fmt.Sprint(d.Days),
					fmt.Sprintf("%.0f", d.Keys), fmt.Sprintf("%.0f", d.Clicks), fmt.Sprintf("%.0f", d.Scrolls),
					fmt.Sprintf("%.1f", layout.PixelsToMeters(d.DistancePx))})
			}
			renderTable(out, []string{"Day", "Days", "Keys", "Clicks", "Scrolls", "Distance (m)"}, rows)

			fmt.Fprintf(out, "%s, hourly average\n", title)
			rows = rows[:0]
			for _, h := range hours {
				if h.Samples == 0 {
					continue
				}
				rows = append(rows, []string{fmt.Sprintf("%02d:00", h.Hour), fmt.Sprint(h.Samples),
					fmt.Sprintf("%.0f", h.Keys), fmt.Sprintf("%.0f", h.Clicks), fmt.Sprintf("%.0f", h.Scrolls),
					fmt.Sprintf("%.1f", layout.PixelsToMeters(h.DistancePx))})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No activity recorded.")
				return nil
			}
			renderTable(out, []string{"Hour", "Hours", "Keys", "Clicks", "Scrolls", "Distance (m)"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&app, "app", "a", "", "limit to one application")
	return cmd
}

func newGroupCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [app] [productivity|other|unassigned]",
		Short: "Show or assign application groups",
		Long: `Without arguments, list applications that belong to a group. With an
application (fuzzy matched) and a group, assign it. Assigning "unassigned"
removes the application from its group.`,
		Example: `  acttel group
  acttel group code productivity
  acttel group browser unassigned`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or an app and a group, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 2 {
				group, err := model.ParseAppGroup(args[1])
				if err != nil {
					return fmt.Errorf("%w (want productivity, other or unassigned)", err)
				}
				appPath, err := resolveApp(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.SetAppGroup(ctx, appPath, group); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s is now %s\n", appPath, group)
				return nil
			}

			groups, err := st.AppGroups(ctx)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(out, "No applications are grouped.")
				return nil
			}
			apps := make([]string, 0, len(groups))
			for a := range groups {
				apps = append(apps, a)
			}
			sort.Slice(apps, func(i, j int) bool {
				if groups[apps[i]] != groups[apps[j]] {
					return groups[apps[i]] < groups[apps[j]]
				}
				return apps[i] < apps[j]
			})
			rows := make([][]string, 0, len(apps))
			for _, a := range apps {
				rows = append(rows, []string{string(groups[a]), filepath.Base(a), a})
			}
			renderTable(out, []string{"Group", "App", "Path"}, rows)
			return nil
		},
	}
	return cmd
}
