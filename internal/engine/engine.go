// Package engine wires capture, focus tracking, aggregation and storage into
// one running unit and owns their startup and shutdown order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aayushbajaj/activity-telemetry/internal/aggregator"
	"github.com/aayushbajaj/activity-telemetry/internal/config"
	"github.com/aayushbajaj/activity-telemetry/internal/foreground"
	"github.com/aayushbajaj/activity-telemetry/internal/heatmap"
	"github.com/aayushbajaj/activity-telemetry/internal/hook"
	"github.com/aayushbajaj/activity-telemetry/internal/metrics"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/monitor"
	"github.com/aayushbajaj/activity-telemetry/internal/queue"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

// Capture install retry bounds
const (
	DefaultMinBackoff = time.Second
	DefaultMaxBackoff = 5 * time.Minute
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("engine already running")

// Engine owns every long-lived component.
type Engine struct {
	cfg        atomic.Pointer[config.Config]
	configPath string

	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	store    *storage.Store
	layout   atomic.Pointer[monitor.Layout]
	queue    *queue.Queue
	tracker  *foreground.Tracker
	probe    foreground.Probe
	spans    chan model.FocusSpan
	poller   *foreground.Poller
	agg      *aggregator.Aggregator
	heatmap  *heatmap.Engine
	listener hook.Listener
	newHook  func(hook.Options) hook.Listener

	statusPath     string
	statusInterval time.Duration

	minBackoff time.Duration
	maxBackoff time.Duration
	captureUp  atomic.Bool
	running    atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics sink. New creates one otherwise.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithListener replaces the platform hook listener. The factory receives
// options bound to the engine's tracker and monitor layout.
func WithListener(newHook func(hook.Options) hook.Listener) Option {
	return func(e *Engine) { e.newHook = newHook }
}

// WithProbe replaces the platform foreground probe.
func WithProbe(p foreground.Probe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithConfigPath enables hot reload of the given file while running.
func WithConfigPath(path string) Option {
	return func(e *Engine) { e.configPath = path }
}

// WithBackoff sets the capture install retry bounds.
func WithBackoff(min, max time.Duration) Option {
	return func(e *Engine) {
		e.minBackoff = min
		e.maxBackoff = max
	}
}

// WithClock overrides time.Now for the aggregator and poller.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New opens the store and builds every component from cfg. Nothing runs
// until Run is called.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		now:        time.Now,
		newHook:    hook.New,
		minBackoff: DefaultMinBackoff,
		maxBackoff: DefaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	e.cfg.Store(cfg)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = store
	e.layout.Store(e.resolveLayout(cfg))

	e.queue = queue.New(cfg.QueueSize, queue.WithMetrics(e.metrics))
	e.tracker = foreground.NewTracker()
	if e.probe == nil {
		e.probe = foreground.NewProbe()
	}
	e.spans = make(chan model.FocusSpan, 64)
	e.poller = foreground.NewPoller(e.tracker, e.probe, e.spans,
		foreground.WithInterval(cfg.PollInterval),
		foreground.WithClock(e.now),
		foreground.WithLogger(e.logger),
		foreground.WithMetrics(e.metrics),
	)
	e.agg = aggregator.New(e.queue, e.spans, store,
		aggregator.WithSettings(aggregator.SettingsFrom(cfg)),
		aggregator.WithLogger(e.logger),
		aggregator.WithMetrics(e.metrics),
		aggregator.WithClock(e.now),
	)
	e.heatmap = heatmap.New(store, &e.layout, heatmap.SettingsFrom(cfg))
	e.listener = e.newHook(hook.Options{Apps: e.tracker, Layout: &e.layout, Now: e.now})
	return e, nil
}

// resolveLayout prefers configured monitors, then detection, then a single
// default monitor.
func (e *Engine) resolveLayout(cfg *config.Config) *monitor.Layout {
	if l := cfg.Layout(); l != nil {
		return l
	}
	ms, err := monitor.Detect()
	if err != nil || len(ms) == 0 {
		e.logger.Warn("monitor detection failed, using default layout", "error", err)
		return monitor.NewLayout(nil)
	}
	return monitor.NewLayout(ms)
}

// Run starts every component and blocks until ctx is done, then shuts down
// in order: hooks, poller, queue, aggregator, store. The store is closed
// when Run returns.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	log := e.logger.With("component", "engine")
	started := e.now()

	pollCtx, stopPoll := context.WithCancel(context.Background())
	defer stopPoll()
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		e.poller.Run(pollCtx)
	}()

	go func() {
		if err := e.agg.Run(context.Background()); err != nil {
			log.Error("aggregator stopped", "error", err)
		}
	}()

	captureCtx, stopCapture := context.WithCancel(ctx)
	defer stopCapture()
	var captureWG sync.WaitGroup
	if e.store.IsCaptureEnabled() {
		captureWG.Add(1)
		go func() {
			defer captureWG.Done()
			e.capture(captureCtx)
		}()
	} else {
		log.Info("capture disabled in settings")
	}

	if e.configPath != "" {
		go func() {
			if err := config.Watch(ctx, e.configPath, e.logger, e.Reload); err != nil {
				log.Warn("config watch unavailable", "path", e.configPath, "error", err)
			}
		}()
	}

	statusCtx, stopStatus := context.WithCancel(context.Background())
	statusDone := make(chan struct{})
	if e.statusPath != "" {
		go func() {
			defer close(statusDone)
			e.publishStatus(statusCtx, started)
		}()
	} else {
		close(statusDone)
	}

	log.Info("engine started", "db", e.cfg.Load().DBPath, "queue_size", e.queue.Capacity())
	<-ctx.Done()
	log.Info("shutting down")

	stopCapture()
	captureWG.Wait()
	if e.captureUp.Swap(false) {
		e.listener.Stop()
		e.metrics.CaptureUp.Set(0)
	}

	stopPoll()
	<-pollDone

	e.queue.Close()
	<-e.agg.Done()

	stopStatus()
	<-statusDone
	if e.statusPath != "" {
		if err := writeStatus(e.statusPath, e.status(started, true)); err != nil {
			log.Warn("status file write failed", "path", e.statusPath, "error", err)
		}
	}

	if err := e.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	log.Info("engine stopped", "dropped", e.queue.Dropped())
	return nil
}

// capture installs the hooks, retrying with exponential backoff until it
// succeeds or ctx is done. An outage is logged once.
func (e *Engine) capture(ctx context.Context) {
	log := e.logger.With("component", "capture")
	backoff := e.minBackoff
	outage := false
	for {
		e.metrics.CaptureRestarts.Inc()
		err := e.listener.Start(e.enqueue)
		if err == nil {
			e.captureUp.Store(true)
			e.metrics.CaptureUp.Set(1)
			if outage {
				log.Info("input capture restored")
			} else {
				log.Info("input capture started")
			}
			return
		}
		if !outage {
			log.Warn("input capture unavailable, retrying", "error", err, "backoff", backoff)
			outage = true
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		backoff = min(backoff*2, e.maxBackoff)
	}
}

func (e *Engine) enqueue(ev model.InputEvent) {
	e.queue.TryEnqueue(ev)
}

// Reload pushes a new configuration snapshot to running components.
func (e *Engine) Reload(cfg *config.Config) {
	e.cfg.Store(cfg)
	e.agg.ApplySettings(aggregator.SettingsFrom(cfg))
	e.heatmap.SetSettings(heatmap.SettingsFrom(cfg))
	if l := cfg.Layout(); l != nil {
		e.layout.Store(l)
	}
	e.logger.Info("configuration reloaded", "component", "engine")
}

// Snapshot returns the unflushed counters.
func (e *Engine) Snapshot(ctx context.Context) (*aggregator.Snapshot, error) {
	return e.agg.Snapshot(ctx)
}

// Config returns the active configuration snapshot.
func (e *Engine) Config() *config.Config { return e.cfg.Load() }

// Store returns the time-series store.
func (e *Engine) Store() *storage.Store { return e.store }

// Heatmap returns the heatmap engine.
func (e *Engine) Heatmap() *heatmap.Engine { return e.heatmap }

// Metrics returns the metrics sink.
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }

// Layout returns the active monitor layout.
func (e *Engine) Layout() *monitor.Layout { return e.layout.Load() }

// ForegroundApp returns the app events are currently attributed to.
func (e *Engine) ForegroundApp() string { return e.tracker.Current() }

// CaptureUp reports whether the hooks are installed.
func (e *Engine) CaptureUp() bool { return e.captureUp.Load() }
