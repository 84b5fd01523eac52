// Package metrics keeps the capture pipeline's health counters in a
// Prometheus registry. The registry is read in-process (acttel status); it is
// never exposed over the network.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acttel"

// Metrics groups every collector the engine updates.
type Metrics struct {
	registry *prometheus.Registry

	EventsEnqueued  prometheus.Counter
	EventsDropped   prometheus.Counter
	EventsApplied   *prometheus.CounterVec
	QueueDepth      prometheus.Gauge
	QueueCapacity   prometheus.Gauge
	Flushes         prometheus.Counter
	FlushFailures   prometheus.Counter
	FlushLatency    prometheus.Histogram
	DeltasLost      prometheus.Counter
	ClockAnomalies  prometheus.Counter
	Unresolved      prometheus.Counter
	CaptureRestarts prometheus.Counter
	CaptureUp       prometheus.Gauge
	RowsPruned      prometheus.Counter
}

// New registers all collectors on a fresh private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "queue", Name: "enqueued_total",
			Help: "Events accepted by the bounded queue.",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "queue", Name: "dropped_total",
			Help: "Events dropped because the queue was full or closed.",
		}),
		EventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "applied_total",
			Help: "Events applied to in-memory counters by kind.",
		}, []string{"kind"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "queue", Name: "depth",
			Help: "Events waiting in the queue.",
		}),
		QueueCapacity: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "queue", Name: "capacity",
			Help: "Configured queue capacity.",
		}),
		Flushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "flushes_total",
			Help: "Deltas durably merged into the store.",
		}),
		FlushFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "flush_failures_total",
			Help: "Failed merge attempts.",
		}),
		FlushLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "flush_seconds",
			Help:    "Time spent merging a delta.",
			Buckets: prometheus.DefBuckets,
		}),
		DeltasLost: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "deltas_lost_total",
			Help: "Deltas discarded after exhausting merge retries.",
		}),
		ClockAnomalies: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "foreground", Name: "clock_anomalies_total",
			Help: "Out-of-order focus transitions discarded.",
		}),
		Unresolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "foreground", Name: "unresolved_total",
			Help: "Foreground processes tagged unknown.",
		}),
		CaptureRestarts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "hook", Name: "install_attempts_total",
			Help: "Hook installation attempts.",
		}),
		CaptureUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "hook", Name: "up",
			Help: "1 while OS hooks are installed.",
		}),
		RowsPruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "storage", Name: "pruned_rows_total",
			Help: "Rows removed by retention pruning.",
		}),
	}
}

// Registry exposes the private registry for in-process gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Sample is one flattened metric value.
type Sample struct {
	Name  string
	Label string
	Value float64
}

// Snapshot gathers the registry into a flat list, histograms reported by
// their sample count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			s := Sample{Name: fam.GetName()}
			for _, lp := range metric.GetLabel() {
				s.Label = lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				s.Value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				s.Value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				s.Value = float64(metric.GetHistogram().GetSampleCount())
			}
			out = append(out, s)
		}
	}
	return out, nil
}
