package foreground

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/metrics"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = time.Second

// Probe reads the executable path of the current foreground application.
type Probe interface {
	Foreground() (string, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() (string, error)

// Foreground implements Probe.
func (f ProbeFunc) Foreground() (string, error) { return f() }

// Poller samples a Probe and feeds transitions into a Tracker. Every span the
// tracker opens or closes is forwarded on the spans channel, which Run
// closes on exit.
type Poller struct {
	tracker  *Tracker
	probe    Probe
	spans    chan<- model.FocusSpan
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// unresolved is true while the probe keeps failing, so that an outage
	// is logged once
	unresolved bool
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the polling period.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

// WithMetrics counts anomalies and resolution failures into m.
func WithMetrics(m *metrics.Metrics) PollerOption {
	return func(p *Poller) { p.metrics = m }
}

// NewPoller creates a poller.
func NewPoller(tracker *Tracker, probe Probe, spans chan<- model.FocusSpan, opts ...PollerOption) *Poller {
	p := &Poller{
		tracker:  tracker,
		probe:    probe,
		spans:    spans,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "foreground")
	return p
}

// Run polls until ctx is done, then closes the open span, forwards it and
// closes the spans channel.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.spans)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()
	for {
		select {
		case <-ctx.Done():
			if span := p.tracker.Close(p.now()); span != nil {
				p.spans <- *span
			}
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll samples the probe once.
func (p *Poller) Poll() {
	at := p.now()
	app, err := p.probe.Foreground()
	if err != nil || app == "" {
		if p.metrics != nil {
			p.metrics.Unresolved.Inc()
		}
		if !p.unresolved {
			p.logger.Debug("foreground app unresolved, tagging unknown", "error", err)
			p.unresolved = true
		}
		app = model.AppUnknown
	} else {
		p.unresolved = false
	}

	closed, opened, err := p.tracker.Observe(Transition{App: app, At: at})
	if err != nil {
		if errors.Is(err, model.ErrClockAnomaly) && p.metrics != nil {
			p.metrics.ClockAnomalies.Inc()
		}
		p.logger.Warn("focus transition discarded", "error", err)
		return
	}
	if closed != nil {
		p.spans <- *closed
	}
	if opened != nil {
		p.spans <- *opened
	}
}
