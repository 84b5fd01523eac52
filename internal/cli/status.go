package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/engine"
)

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collector health and database state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			out := cmd.OutOrStdout()
			now := g.now()

			s, err := engine.ReadStatus(cfg.StatusFile)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				fmt.Fprintln(out, "Collector: never started (run 'acttel run')")
			case err != nil:
				return err
			case s.Stale(now):
				fmt.Fprintf(out, "Collector: stopped (last seen %s)\n", humanize.Time(s.UpdatedAt))
			default:
				capture := "up"
				if !s.CaptureUp {
					capture = "unavailable, retrying"
				}
				fmt.Fprintf(out, "Collector: running (pid %d, since %s)\n", s.PID, humanize.Time(s.StartedAt))
				fmt.Fprintf(out, "Capture:   %s\n", capture)
				fmt.Fprintf(out, "Foreground: %s\n", filepath.Base(s.ForegroundApp))
			}

			if s != nil {
				rows := [][]string{
					{"events enqueued", comma(int64(s.Metric("acttel_queue_enqueued_total")))},
					{"events dropped", comma(int64(s.Metric("acttel_queue_dropped_total")))},
					{"queue depth", comma(int64(s.Metric("acttel_queue_depth")))},
					{"flushes", comma(int64(s.Metric("acttel_aggregator_flushes_total")))},
					{"flush failures", comma(int64(s.Metric("acttel_aggregator_flush_failures_total")))},
					{"deltas lost", comma(int64(s.Metric("acttel_aggregator_deltas_lost_total")))},
					{"clock anomalies", comma(int64(s.Metric("acttel_foreground_clock_anomalies_total")))},
					{"rows pruned", comma(int64(s.Metric("acttel_storage_pruned_rows_total")))},
				}
				renderTable(out, []string{"Metric", "Value"}, rows)
			}

			size := "missing"
			if info, err := os.Stat(cfg.DBPath); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			oldest, err := st.OldestDate(cmd.Context())
			if err != nil {
				return err
			}
			if oldest == "" {
				oldest = "no data"
			}
			retention := st.RetentionPolicy(cfg.Retention())
			keep := "forever"
			if !retention.KeepsForever() {
				keep = fmt.Sprintf("%d days", retention.Days)
			}
			capture := "enabled"
			if !st.IsCaptureEnabled() {
				capture = "paused"
			}

			fmt.Fprintf(out, "Database:  %s (%s)\n", cfg.DBPath, size)
			fmt.Fprintf(out, "Oldest:    %s\n", oldest)
			fmt.Fprintf(out, "Retention: %s\n", keep)
			fmt.Fprintf(out, "Capture setting: %s\n", capture)
			return nil
		},
	}
}
