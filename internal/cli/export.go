package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/export"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

func newExportCmd(g *globals) *cobra.Command {
	var rangeName, format, dataset, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export statistics as CSV or JSON",
		Example: `  # Every dataset as CSV files in ./export
  acttel export --out export

  # One JSON document for the last 30 days
  acttel export --format json --range month --out activity.json

  # Key counts to stdout
  acttel export --dataset keys`,
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
			x := export.New(st, layoutFor(cfg))

			switch format {
			case "json":
				return writeTo(cmd, out, func(w io.Writer) error { return x.JSON(ctx, w, r) })
			case "csv":
			default:
				return fmt.Errorf("invalid format %q (want csv or json)", format)
			}

			writers := map[string]func(context.Context, io.Writer, model.TimeRange) error{
				"daily":      x.DailyCSV,
				"apps":       x.AppsCSV,
				"keys":       x.KeysCSV,
				"screentime": x.ScreenTimeCSV,
				"groups":     x.GroupsCSV,
				"weekdays":   x.WeekdaysCSV,
				"hours":      x.HoursCSV,
			}
			if dataset != "all" {
				write, ok := writers[dataset]
				if !ok {
					return fmt.Errorf("invalid dataset %q (want daily, apps, keys, screentime, groups, weekdays, hours or all)", dataset)
				}
				return writeTo(cmd, out, func(w io.Writer) error { return write(ctx, w, r) })
			}

			dir := out
			if dir == "-" {
				dir = "."
			}
			paths, err := x.All(ctx, dir, r)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(paths))
			for name := range paths {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, paths[name])
			}
			return nil
		},
	}
	addRangeFlag(cmd, &rangeName, "all")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "all", "csv dataset: daily, apps, keys, screentime, groups, weekdays, hours or all")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, or directory for all csv datasets; - is stdout")
	return cmd
}

// writeTo runs fn against stdout or the named file.
func writeTo(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "-" || path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
