package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestCountersAndGauges(t *testing.T) {
	m := NewMetricsCollector()

	m.IncrementCounter(MetricPipelineRuns, 1)
	m.IncrementCounter(MetricPipelineRuns, 2)
	if got := m.GetCounter(MetricPipelineRuns); got != 3 {
		t.Errorf("Expected counter 3, got %d", got)
	}

	m.SetGauge(MetricCacheSize, 7)
	if got := m.GetGauge(MetricCacheSize); got != 7 {
		t.Errorf("Expected gauge 7, got %f", got)
	}
}

func TestTimers(t *testing.T) {
	m := NewMetricsCollector()
	for i := 1; i <= 150; i++ {
		m.RecordTimer(MetricChatLatency, time.Duration(i)*time.Millisecond)
	}

	// Only the latest 100 samples (51..150ms) are kept.
	avg := m.GetTimerAverage(MetricChatLatency)
	if avg != 100500*time.Microsecond {
		t.Errorf("Expected average 100.5ms, got %v", avg)
	}
	if p := m.GetTimerP95(MetricChatLatency); p != 146*time.Millisecond {
		t.Errorf("Expected p95 146ms, got %v", p)
	}
	if m.GetTimerAverage("missing") != 0 {
		t.Errorf("Expected zero average for unknown timer")
	}
}

func TestObserveCall(t *testing.T) {
	m := NewMetricsCollector()
	start := time.Now()

	m.ObserveCall(MetricEmbedCalls, MetricEmbedFailures, MetricEmbedLatency, start, nil)
	m.ObserveCall(MetricEmbedCalls, MetricEmbedFailures, MetricEmbedLatency, start, errors.New("boom"))

	if got := m.GetCounter(MetricEmbedCalls); got != 2 {
		t.Errorf("Expected 2 calls, got %d", got)
	}
	if got := m.GetCounter(MetricEmbedFailures); got != 1 {
		t.Errorf("Expected 1 failure, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := NewMetricsCollector()
	m.IncrementCounter(MetricCacheHits, 4)
	m.SetGauge(MetricCacheSize, 2)
	m.RecordTimer(MetricPipelineLatency, 2*time.Millisecond)

	snap := m.Snapshot()
	if snap[MetricCacheHits] != 4 {
		t.Errorf("Expected cache hits 4 in snapshot, got %v", snap[MetricCacheHits])
	}
	if snap[MetricCacheSize] != 2 {
		t.Errorf("Expected cache size 2 in snapshot, got %v", snap[MetricCacheSize])
	}
	if snap[MetricPipelineLatency+".avg_ms"] != 2 {
		t.Errorf("Expected 2ms latency in snapshot, got %v", snap[MetricPipelineLatency+".avg_ms"])
	}
}

func TestTimeSince(t *testing.T) {
	m := NewMetricsCollector()
	if m.GetTimeSince(MetricLastRun) != 0 {
		t.Error("Expected zero for an event that never happened")
	}

	m.RecordTimestamp(MetricLastRun)
	if m.GetTimeSince(MetricLastRun) <= 0 {
		t.Error("Expected a positive duration after recording")
	}
}
