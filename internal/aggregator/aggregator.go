// Package aggregator owns all mutable aggregation state. A single goroutine
// drains the event queue, folds events into an in-memory delta and
// periodically merges the delta into the store.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aayushbajaj/activity-telemetry/internal/config"
	"github.com/aayushbajaj/activity-telemetry/internal/metrics"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
	"github.com/aayushbajaj/activity-telemetry/internal/queue"
	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

// ErrStopped is returned by requests made after Run has exited.
var ErrStopped = errors.New("aggregator stopped")

// finalFlushTimeout bounds the last flush during shutdown.
const finalFlushTimeout = 10 * time.Second

// Store is the persistence the aggregator writes to.
type Store interface {
	Merge(ctx context.Context, d *model.Delta) error
	Prune(ctx context.Context, policy model.RetentionPolicy, now time.Time) (storage.PruneResult, error)
	RetentionPolicy(fallback model.RetentionPolicy) model.RetentionPolicy
}

// Settings are the tunables the aggregator reads. They can be replaced at
// runtime with ApplySettings.
type Settings struct {
	FlushInterval    time.Duration
	FlushEvents      int
	MaxFlushAttempts int
	PruneInterval    time.Duration

	// Retention applies when the store holds no retention setting.
	Retention model.RetentionPolicy
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFrom(config.New())
}

// SettingsFrom extracts aggregator settings from a config snapshot.
func SettingsFrom(c *config.Config) Settings {
	return Settings{
		FlushInterval:    c.FlushInterval,
		FlushEvents:      c.FlushEvents,
		MaxFlushAttempts: c.MaxFlushAttempts,
		PruneInterval:    c.PruneInterval,
		Retention:        c.Retention(),
	}
}

type pendingDelta struct {
	delta    *model.Delta
	attempts int
}

type snapshotRequest struct {
	reply chan *Snapshot
}

// Aggregator is the single consumer of the event queue.
type Aggregator struct {
	queue   *queue.Queue
	spans   <-chan model.FocusSpan
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	settingsCh chan Settings
	snapCh     chan snapshotRequest
	done       chan struct{}

	// owned by the Run goroutine
	settings  Settings
	delta     *model.Delta
	pending   []*pendingDelta
	open      *model.FocusSpan
	sinceLast int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSettings sets the initial settings.
func WithSettings(s Settings) Option {
	return func(a *Aggregator) { a.settings = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithMetrics records flushes and applied events into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an aggregator reading events from q and focus spans from
// spans. spans may be nil when foreground tracking is off.
func New(q *queue.Queue, spans <-chan model.FocusSpan, store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		queue:      q,
		spans:      spans,
		store:      store,
		logger:     slog.Default(),
		metrics:    metrics.New(),
		now:        time.Now,
		newID:      uuid.NewString,
		settings:   DefaultSettings(),
		settingsCh: make(chan Settings, 1),
		snapCh:     make(chan snapshotRequest),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "aggregator")
	a.delta = model.NewDelta(a.newID(), a.now())
	return a
}

// Done is closed when Run returns.
func (a *Aggregator) Done() <-chan struct{} { return a.done }

// Run consumes events until the queue is closed and drained and the span
// channel is closed, then flushes one last time. If ctx is cancelled first,
// whatever is already buffered is applied and flushed before returning.
func (a *Aggregator) Run(ctx context.Context) error {
	defer close(a.done)

	a.prune(ctx)

	flushTicker := time.NewTicker(a.settings.FlushInterval)
	defer flushTicker.Stop()
	pruneTicker := time.NewTicker(a.settings.PruneInterval)
	defer pruneTicker.Stop()

	events := a.queue.C()
	spans := a.spans
	for events != nil || spans != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.applyEvent(ctx, ev)

		case span, ok := <-spans:
			if !ok {
				spans = nil
				continue
			}
			a.applySpan(span)

		case s := <-a.settingsCh:
			if s.FlushInterval != a.settings.FlushInterval {
				flushTicker.Reset(s.FlushInterval)
			}
			if s.PruneInterval != a.settings.PruneInterval {
				pruneTicker.Reset(s.PruneInterval)
			}
			a.settings = s
			a.logger.Info("settings updated", "flush_interval", s.FlushInterval,
				"flush_events", s.FlushEvents, "retention_days", s.Retention.Days)

		case req := <-a.snapCh:
			a.drainBuffered(ctx)
			req.reply <- a.snapshot()

		case <-flushTicker.C:
			a.queue.SampleDepth()
			a.flush(ctx)

		case <-pruneTicker.C:
			a.prune(ctx)

		case <-ctx.Done():
			a.drainBuffered(context.Background())
			a.finalFlush()
			return ctx.Err()
		}
	}

	a.finalFlush()
	return nil
}

func (a *Aggregator) applyEvent(ctx context.Context, ev model.InputEvent) {
	apply(a.delta, ev)
	if a.metrics != nil {
		a.metrics.EventsApplied.WithLabelValues(ev.Kind.String()).Inc()
	}
	a.sinceLast++
	if a.sinceLast >= a.settings.FlushEvents {
		a.flush(ctx)
	}
}

func (a *Aggregator) applySpan(span model.FocusSpan) {
	if span.Open() {
		s := span
		a.open = &s
		return
	}
	if a.open != nil && a.open.App == span.App && a.open.Start.Equal(span.Start) {
		a.open = nil
	}
	applySpan(a.delta, span)
}

// drainBuffered applies the events already sitting in the queue without
// waiting for more.
func (a *Aggregator) drainBuffered(ctx context.Context) {
	for n := a.queue.Len(); n > 0; n-- {
		select {
		case ev, ok := <-a.queue.C():
			if !ok {
				return
			}
			a.applyEvent(ctx, ev)
		default:
			return
		}
	}
}

// flush hands the current delta to the store. Deltas that fail stay queued
// and are retried, oldest first, on later flushes until MaxFlushAttempts is
// reached.
func (a *Aggregator) flush(ctx context.Context) {
	a.sinceLast = 0
	if !a.delta.Empty() {
		a.pending = append(a.pending, &pendingDelta{delta: a.delta})
		a.delta = model.NewDelta(a.newID(), a.now())
	}

	for len(a.pending) > 0 {
		p := a.pending[0]
		start := time.Now()
		err := a.store.Merge(ctx, p.delta)
		if a.metrics != nil {
			a.metrics.FlushLatency.Observe(time.Since(start).Seconds())
		}
		if err == nil {
			if a.metrics != nil {
				a.metrics.Flushes.Inc()
			}
			a.logger.Debug("delta flushed", "id", p.delta.ID, "events", p.delta.Events)
			a.pending = a.pending[1:]
			continue
		}

		p.attempts++
		if a.metrics != nil {
			a.metrics.FlushFailures.Inc()
		}
		if p.attempts >= a.settings.MaxFlushAttempts {
			a.logger.Error("delta lost after retries", "id", p.delta.ID,
				"events", p.delta.Events, "attempts", p.attempts, "error", err)
			if a.metrics != nil {
				a.metrics.DeltasLost.Inc()
			}
			a.pending = a.pending[1:]
			continue
		}
		a.logger.Warn("flush failed, will retry", "id", p.delta.ID,
			"attempt", p.attempts, "error", err)
		return
	}
}

func (a *Aggregator) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()

	for i := 0; i < a.settings.MaxFlushAttempts; i++ {
		a.flush(ctx)
		if len(a.pending) == 0 {
			return
		}
	}
	for _, p := range a.pending {
		a.logger.Error("delta lost at shutdown", "id", p.delta.ID, "events", p.delta.Events)
		if a.metrics != nil {
			a.metrics.DeltasLost.Inc()
		}
	}
	a.pending = nil
}

// prune applies the retention policy. The stored setting is read on every
// pass so that a change made by another process takes effect on the next
// tick.
func (a *Aggregator) prune(ctx context.Context) {
	policy := a.store.RetentionPolicy(a.settings.Retention)
	if policy.KeepsForever() {
		return
	}
	res, err := a.store.Prune(ctx, policy, a.now())
	if err != nil {
		a.logger.Warn("retention prune failed", "error", err)
		return
	}
	if n := res.Total(); n > 0 {
		a.logger.Info("retention prune", "horizon", res.Horizon, "rows", n)
		if a.metrics != nil {
			a.metrics.RowsPruned.Add(float64(n))
		}
	}
}

func (a *Aggregator) snapshot() *Snapshot {
	merged := model.NewDelta("", a.now())
	for _, p := range a.pending {
		merged.Merge(p.delta)
	}
	merged.Merge(a.delta)

	s := &Snapshot{
		TakenAt:  a.now(),
		Delta:    merged,
		Pending:  len(a.pending),
		QueueLen: a.queue.Len(),
		Dropped:  a.queue.Dropped(),
	}
	if a.open != nil {
		o := *a.open
		s.Open = &o
	}
	return s
}

// Snapshot returns a copy of unflushed state, served by the Run goroutine.
// Events already queued when the request is handled are included.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	req := snapshotRequest{reply: make(chan *Snapshot, 1)}
	select {
	case a.snapCh <- req:
	case <-a.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-req.reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ApplySettings replaces the settings. A newer call supersedes one not yet
// picked up.
func (a *Aggregator) ApplySettings(s Settings) {
	for {
		select {
		case a.settingsCh <- s:
			return
		case <-a.done:
			return
		default:
			select {
			case <-a.settingsCh:
			default:
			}
		}
	}
}
