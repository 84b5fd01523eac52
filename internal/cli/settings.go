package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

func newPruneCmd(g *globals) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete data older than the retention window",
		Long: `Delete rows dated before the retention horizon. Without --days the stored
retention setting (or retention_days from the config) is used. The running
collector also prunes on its own every prune_interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			policy := st.RetentionPolicy(cfg.Retention())
			if cmd.Flags().Changed("days") {
				policy = model.RetentionPolicy{Days: days}
			}
			out := cmd.OutOrStdout()
			if policy.KeepsForever() {
				fmt.Fprintln(out, "Retention is forever; nothing to prune.")
				return nil
			}

			res, err := st.Prune(cmd.Context(), policy, g.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Pruned %s rows dated before %s\n", comma(res.Total()), res.Horizon)

			tables := make([]string, 0, len(res.Rows))
			for t := range res.Rows {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			var rows [][]string
			for _, t := range tables {
				if res.Rows[t] > 0 {
					rows = append(rows, []string{t, comma(res.Rows[t])})
				}
			}
			if len(rows) > 0 {
				renderTable(out, []string{"Table", "Rows"}, rows)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "keep this many days (<= 0 keeps everything)")
	return cmd
}

func newRetentionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "retention [days|forever]",
		Short: "Show or set the retention window",
		Long: `Show or set how many days of data are kept. The stored setting overrides
retention_days from the config file and is picked up by the running
collector on its next prune.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				policy := model.RetentionPolicy{}
				if args[0] != "forever" {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("invalid retention %q (want a positive number of days or forever)", args[0])
					}
					policy.Days = n
				}
				if err := st.SetRetentionPolicy(policy); err != nil {
					return err
				}
			}

			policy := st.RetentionPolicy(cfg.Retention())
			if policy.KeepsForever() {
				fmt.Fprintln(out, "Retention: forever")
			} else {
				fmt.Fprintf(out, "Retention: %d days (keeping data from %s)\n", policy.Days, policy.Horizon(g.now()))
			}
			return nil
		},
	}
}

func newCaptureCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:       "capture [on|off]",
		Short:     "Show or toggle input capture",
		Long:      `Pause or resume input capture. The setting is read when 'acttel run' starts.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				if err := st.SetCaptureEnabled(args[0] == "on"); err != nil {
					return err
				}
			}
			state := "on"
			if !st.IsCaptureEnabled() {
				state = "off"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Capture: %s\n", state)
			return nil
		},
	}
}
