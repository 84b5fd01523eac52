package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/activity-telemetry/internal/config"
	"github.com/aayushbajaj/activity-telemetry/internal/engine"
	"github.com/aayushbajaj/activity-telemetry/internal/logging"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

func newRunCmd(g *globals) *cobra.Command {
	var logStderr bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture input activity until interrupted",
		Long: `Install the keyboard and mouse hooks, track the foreground application and
aggregate everything into the database until SIGINT or SIGTERM.

On macOS the terminal (or the acttel binary) needs Accessibility permission.
If the hooks cannot be installed, acttel keeps retrying in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			var out io.Writer = os.Stderr
			if !logStderr {
				f, err := logging.OpenFile(cfg.LogFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			path := g.configPath
			if path == "" {
				path = config.Path()
			}
			eng, err := engine.New(cfg,
				engine.WithLogger(logger),
				engine.WithConfigPath(path),
				engine.WithStatusFile(cfg.StatusFile, engine.DefaultStatusInterval),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "acttel collecting into %s (Ctrl+C to stop)\n", cfg.DBPath)
			if !logStderr {
				fmt.Fprintf(cmd.OutOrStdout(), "logs: %s\n", cfg.LogFile)
			}
			return eng.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&logStderr, "log-stderr", false, "log to stderr instead of the log file")
	return cmd
}

// layoutFor returns the configured monitors, the detected ones, or a single
// default monitor.
func layoutFor(cfg *config.Config) *monitor.Layout {
	if l := cfg.Layout(); l != nil {
		return l
	}
	if ms, err := monitor.Detect(); err == nil && len(ms) > 0 {
		return monitor.NewLayout(ms)
	}
	return monitor.NewLayout(nil)
}
