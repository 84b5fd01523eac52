package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/metrics"
)

// DefaultStatusInterval is how often the status file is rewritten.
const DefaultStatusInterval = 5 * time.Second

// Status is the daemon state published for other processes.
type Status struct {
	PID           int              `json:"pid"`
	StartedAt     time.Time        `json:"started_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Stopped       bool             `json:"stopped"`
	CaptureUp     bool             `json:"capture_up"`
	ForegroundApp string           `json:"foreground_app"`
	Monitors      int              `json:"monitors"`
	Metrics       []metrics.Sample `json:"metrics"`
}

// Metric returns the value of a named sample, or 0.
func (s *Status) Metric(name string) float64 {
	var v float64
	for _, m := range s.Metrics {
		if m.Name == name {
			v += m.Value
		}
	}
	return v
}

// Stale reports whether the daemon stopped updating the file.
func (s *Status) Stale(now time.Time) bool {
	return s.Stopped || now.Sub(s.UpdatedAt) > 3*DefaultStatusInterval
}

// ReadStatus loads a status file.
func ReadStatus(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse status file: %w", err)
	}
	return &s, nil
}

// WithStatusFile publishes a Status to path while running.
func WithStatusFile(path string, interval time.Duration) Option {
	return func(e *Engine) {
		e.statusPath = path
		e.statusInterval = interval
	}
}

func (e *Engine) status(started time.Time, stopped bool) *Status {
	e.queue.SampleDepth()
	samples, err := e.metrics.Snapshot()
	if err != nil {
		e.logger.Debug("metrics snapshot failed", "error", err)
	}
	return &Status{
		PID:           os.Getpid(),
		StartedAt:     started,
		UpdatedAt:     e.now(),
		Stopped:       stopped,
		CaptureUp:     e.captureUp.Load(),
		ForegroundApp: e.tracker.Current(),
		Monitors:      len(e.layout.Load().Monitors()),
		Metrics:       samples,
	}
}

// writeStatus replaces the file atomically.
func writeStatus(path string, s *Status) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// publishStatus rewrites the status file until ctx is done.
func (e *Engine) publishStatus(ctx context.Context, started time.Time) {
	interval := e.statusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := writeStatus(e.statusPath, e.status(started, false)); err != nil {
			e.logger.Warn("status file write failed", "component", "engine", "path", e.statusPath, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
