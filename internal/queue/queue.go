// Package queue is the bounded hand-off between the OS hook callback and the
// aggregator. Producers never block: when the buffer is full the event is
// dropped and counted.
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aayushbajaj/activity-telemetry/internal/metrics"
	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// DefaultCapacity bounds the queue when no capacity is configured.
const DefaultCapacity = 10000

// Option configures a Queue.
type Option func(*Queue)

// WithMetrics mirrors enqueue/drop counts and depth into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// Queue is a fixed-capacity FIFO of input events.
type Queue struct {
	events   chan model.InputEvent
	capacity int
	dropped  atomic.Uint64
	metrics  *metrics.Metrics

	mu     sync.RWMutex
	closed bool
}

// New creates a queue holding at most capacity events.
func New(capacity int, opts ...Option) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{
		events:   make(chan model.InputEvent, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.metrics != nil {
		q.metrics.QueueCapacity.Set(float64(capacity))
	}
	return q
}

// TryEnqueue adds an event without blocking. It returns false and counts a
// drop when the queue is full or closed.
func (q *Queue) TryEnqueue(ev model.InputEvent) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop()
		return false
	}

	select {
	case q.events <- ev:
		if q.metrics != nil {
			q.metrics.EventsEnqueued.Inc()
		}
		q.SampleDepth()
		return true
	default:
		q.drop()
		return false
	}
}

func (q *Queue) drop() {
	q.dropped.Add(1)
	if q.metrics != nil {
		q.metrics.EventsDropped.Inc()
	}
}

// C exposes the receive side for consumers that select over several
// sources. It is closed once Close has been called and the buffer drained.
func (q *Queue) C() <-chan model.InputEvent {
	return q.events
}

// Dequeue blocks until an event is available, the queue is closed and
// drained (ok=false), or ctx is done (ok=false).
func (q *Queue) Dequeue(ctx context.Context) (model.InputEvent, bool) {
	select {
	case ev, ok := <-q.events:
		q.SampleDepth()
		return ev, ok
	case <-ctx.Done():
		return model.InputEvent{}, false
	}
}

// Len returns the number of buffered events.
func (q *Queue) Len() int { return len(q.events) }

// SampleDepth records the current buffer length in the depth gauge and
// returns it. Consumers reading C directly call it to keep the gauge fresh.
func (q *Queue) SampleDepth() int {
	n := len(q.events)
	if q.metrics != nil {
		q.metrics.QueueDepth.Set(float64(n))
	}
	return n
}

// Capacity returns the configured bound.
func (q *Queue) Capacity() int { return q.capacity }

// Dropped returns how many events were rejected so far.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Close stops accepting events. Buffered events stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.events)
}

// IsClosed reports whether Close has been called.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
