// Package config defines the runtime configuration and how it is loaded.
//
// Values are layered (low -> high): defaults, YAML file, ACTTEL_* env vars.
// A loaded Config is treated as an immutable snapshot; a reload produces a
// new value instead of mutating the old one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/logging"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
)

// DirName is the per-user data directory under $HOME.
const DirName = ".acttel"

// HeatmapConfig tunes grid construction.
type HeatmapConfig struct {
	// Scale is the grid resolution relative to the monitor's pixel size.
	Scale float64 `koanf:"scale"`

	// Sigma is the Gaussian standard deviation in grid cells.
	Sigma float64 `koanf:"sigma"`

	// RawRangeLimit is the longest range served from hourly samples; longer
	// ranges read the daily rollup.
	RawRangeLimit time.Duration `koanf:"raw_range_limit"`
}

// Config contains process configuration.
type Config struct {
	// DBPath is the sqlite file holding all aggregated data.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile receives daemon logs from `acttel run`.
	LogFile string `koanf:"log_file"`

	// StatusFile is rewritten by `acttel run` with a metrics snapshot for
	// `acttel status`.
	StatusFile string `koanf:"status_file"`

	// QueueSize bounds the hook -> aggregator event queue.
	QueueSize int `koanf:"queue_size"`

	// FlushInterval and FlushEvents trigger a flush, whichever comes first.
	FlushInterval time.Duration `koanf:"flush_interval"`
	FlushEvents   int           `koanf:"flush_events"`

	// MaxFlushAttempts caps how often one delta is retried before it is dropped.
	MaxFlushAttempts int `koanf:"max_flush_attempts"`

	// PruneInterval is how often retention pruning runs.
	PruneInterval time.Duration `koanf:"prune_interval"`

	// RetentionDays keeps this many days of data; <= 0 keeps everything.
	RetentionDays int `koanf:"retention_days"`

	// PollInterval is the foreground window polling period.
	PollInterval time.Duration `koanf:"poll_interval"`

	Heatmap HeatmapConfig `koanf:"heatmap"`

	// Monitors overrides detected displays. Empty means detect at startup.
	Monitors []monitor.Monitor `koanf:"monitors"`

	// Theme names the dashboard colour theme.
	Theme string `koanf:"theme"`
}

// Dir returns ~/.acttel, falling back to the working directory when the home
// directory cannot be resolved.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath is the config file read when ACTTEL_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// New returns a Config populated with defaults.
func New() *Config {
	dir := Dir()
	return &Config{
		DBPath:           filepath.Join(dir, "acttel.db"),
		LogLevel:         "info",
		LogFormat:        "text",
		LogFile:          filepath.Join(dir, "acttel.log"),
		StatusFile:       filepath.Join(dir, "status.json"),
		QueueSize:        10_000,
		FlushInterval:    5 * time.Second,
		FlushEvents:      5_000,
		MaxFlushAttempts: 5,
		PruneInterval:    time.Hour,
		RetentionDays:    365,
		PollInterval:     time.Second,
		Heatmap: HeatmapConfig{
			Scale:         0.25,
			Sigma:         8,
			RawRangeLimit: 24 * time.Hour,
		},
		Theme: "default",
	}
}

// Retention returns the configured retention policy.
func (c *Config) Retention() model.RetentionPolicy {
	return model.RetentionPolicy{Days: c.RetentionDays}
}

// Layout returns the configured monitor layout, or nil when monitors should
// be detected.
func (c *Config) Layout() *monitor.Layout {
	if len(c.Monitors) == 0 {
		return nil
	}
	return monitor.NewLayout(c.Monitors)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.FlushInterval <= 0:
		return fmt.Errorf("%w: flush_interval must be positive", ErrInvalidConfig)
	case c.FlushEvents <= 0:
		return fmt.Errorf("%w: flush_events must be positive", ErrInvalidConfig)
	case c.MaxFlushAttempts < 1:
		return fmt.Errorf("%w: max_flush_attempts must be at least 1", ErrInvalidConfig)
	case c.PruneInterval <= 0:
		return fmt.Errorf("%w: prune_interval must be positive", ErrInvalidConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	case c.Heatmap.Scale <= 0 || c.Heatmap.Scale > 1:
		return fmt.Errorf("%w: heatmap.scale must be in (0, 1]", ErrInvalidConfig)
	case c.Heatmap.Sigma <= 0:
		return fmt.Errorf("%w: heatmap.sigma must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	for _, m := range c.Monitors {
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("%w: monitor %d has no resolution", ErrInvalidConfig, m.ID)
		}
	}
	return nil
}
