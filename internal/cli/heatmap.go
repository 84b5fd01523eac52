package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/heatmap"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
	"github.com/aayushbajaj/activity-telemetry/internal/tui"
)

func newHeatmapCmd(g *globals) *cobra.Command {
	var (
		rangeName, app, kind string
		mon, cols            int
		sigma                float64
	)

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Draw click or movement density for a monitor",
		Long: `Build a smoothed density grid from stored pointer samples and draw it in
the terminal. Ranges longer than heatmap.raw_range_limit read the daily
rollup, which is coarser but much smaller.`,
		Example: `  acttel heatmap
  acttel heatmap --range month --kind move
  acttel heatmap --monitor 1 --app firefox`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.parseRange(rangeName)
			if err != nil {
				return err
			}
			sk := model.SampleKind(kind)
			if sk != model.SampleClick && sk != model.SampleMove {
				return fmt.Errorf("invalid kind %q (want click or move)", kind)
			}

			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmd.Context()

			appPath, err := resolveApp(ctx, st, app)
			if err != nil {
				return err
			}

			var layout atomic.Pointer[monitor.Layout]
			layout.Store(layoutFor(cfg))
			settings := heatmap.SettingsFrom(cfg)
			if sigma > 0 {
				settings.Sigma = sigma
			}
			eng := heatmap.New(st, &layout, settings)

			grid, err := eng.BuildGrid(ctx, heatmap.Query{Range: r, Monitor: mon, App: appPath, Kind: sk})
			if err != nil {
				return err
			}

			m, _ := layout.Load().Get(mon)
			rows := max(1, cols*m.Height/max(1, m.Width)/2)
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderHeatmap(grid, cols, rows))
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "today")
	cmd.Flags().StringVarP(&app, "app", "a", "", "limit to one application")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.SampleClick), "sample kind: click or move")
	cmd.Flags().IntVarP(&mon, "monitor", "m", 0, "monitor id")
	cmd.Flags().IntVar(&cols, "cols", 80, "preview width in characters")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "override the smoothing sigma (grid cells)")
	return cmd
}
