package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()

	m.EventsEnqueued.Add(3)
	m.EventsDropped.Inc()
	m.EventsApplied.WithLabelValues("key").Add(2)
	m.QueueCapacity.Set(10)

	if got := testutil.ToFloat64(m.EventsEnqueued); got != 3 {
		t.Errorf("EventsEnqueued = %f, want 3", got)
	}
	if got := testutil.ToFloat64(m.EventsDropped); got != 1 {
		t.Errorf("EventsDropped = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.EventsApplied.WithLabelValues("key")); got != 2 {
		t.Errorf("EventsApplied{key} = %f, want 2", got)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.EventsDropped.Inc()
	if got := testutil.ToFloat64(b.EventsDropped); got != 0 {
		t.Errorf("Expected separate registries, got %f drops on the second instance", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.EventsDropped.Add(7)
	m.FlushLatency.Observe(0.01)

	samples, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	found := map[string]float64{}
	for _, s := range samples {
		found[s.Name] = s.Value
	}
	if found["acttel_queue_dropped_total"] != 7 {
		t.Errorf("Expected 7 drops in snapshot, got %f", found["acttel_queue_dropped_total"])
	}
	if found["acttel_aggregator_flush_seconds"] != 1 {
		t.Errorf("Expected 1 histogram sample, got %f", found["acttel_aggregator_flush_seconds"])
	}
}
