// Package telemetry collects in-process metrics for the summarization
// pipeline and its remote model calls.
package telemetry

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// MetricsCollector is a thread-safe store of counters, gauges, latency
// samples and event times, shared by every stage of a request.
type MetricsCollector struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
	timers   map[string]*samples
	events   map[string]time.Time
}

// Remote call metrics, one family per model endpoint.
const (
	MetricChatCalls          = "remote.chat.calls"
	MetricChatFailures       = "remote.chat.failures"
	MetricChatLatency        = "remote.chat.latency"
	MetricSummarizeCalls     = "remote.summarize.calls"
	MetricSummarizeFailures  = "remote.summarize.failures"
	MetricSummarizeLatency   = "remote.summarize.latency"
	MetricEmbedCalls         = "remote.embed.calls"
	MetricEmbedFailures      = "remote.embed.failures"
	MetricEmbedLatency       = "remote.embed.latency"
	MetricRemoteHealthPrefix = "remote.health."
)

// Pipeline metrics.
const (
	MetricPipelineRuns       = "pipeline.runs"
	MetricPipelineLatency    = "pipeline.latency"
	MetricPipelineInputError = "pipeline.input_errors"
	MetricChunksProcessed    = "pipeline.chunks"
	MetricRecursionDepthHit  = "pipeline.recursion_limit"
	MetricRankingFailures    = "pipeline.ranking_failures"
	MetricLastRun            = "pipeline.last_run"
)

// Cache metrics.
const (
	MetricCacheHits   = "cache.hits"
	MetricCacheMisses = "cache.misses"
	MetricCacheSize   = "cache.size"
)

// maxTimerSamples bounds the durations kept per timer.
const maxTimerSamples = 100

// samples holds the most recent durations of one timer.
type samples struct {
	values []time.Duration
}

func (s *samples) add(d time.Duration) {
	s.values = append(s.values, d)
	if n := len(s.values); n > maxTimerSamples {
		s.values = append(s.values[:0], s.values[n-maxTimerSamples:]...)
	}
}

func (s *samples) mean() time.Duration {
	if s == nil || len(s.values) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.values {
		total += d
	}
	return total / time.Duration(len(s.values))
}

// percentile returns the sample at rank floor(len*q), clamped to the last.
func (s *samples) percentile(q float64) time.Duration {
	if s == nil || len(s.values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.values)
	slices.Sort(sorted)
	return sorted[min(int(float64(len(sorted))*q), len(sorted)-1)]
}

// NewMetricsCollector returns an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters: map[string]int64{},
		gauges:   map[string]float64{},
		timers:   map[string]*samples{},
		events:   map[string]time.Time{},
	}
}

// IncrementCounter adds amount to a counter.
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	m.counters[name] += amount
	m.mu.Unlock()
}

// SetGauge overwrites a gauge.
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

// RecordTimer adds a latency sample.
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[name]
	if !ok {
		t = &samples{}
		m.timers[name] = t
	}
	t.add(duration)
}

// ObserveCall records a call count, an optional failure and the latency
// for one remote invocation.
func (m *MetricsCollector) ObserveCall(calls, failures, latency string, start time.Time, err error) {
	m.IncrementCounter(calls, 1)
	if err != nil {
		m.IncrementCounter(failures, 1)
	}
	m.RecordTimer(latency, time.Since(start))
}

// RecordTimestamp marks an event as happening now.
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	m.events[name] = time.Now()
	m.mu.Unlock()
}

// GetCounter returns a counter, zero when unknown.
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// GetGauge returns a gauge, zero when unknown.
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[name]
}

// GetTimerAverage returns the mean of the kept samples.
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timers[name].mean()
}

// GetTimerP95 returns the 95th percentile of the kept samples.
func (m *MetricsCollector) GetTimerP95(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timers[name].percentile(0.95)
}

// GetTimeSince returns the time since an event, or zero if it never happened.
func (m *MetricsCollector) GetTimeSince(name string) time.Duration {
	m.mu.RLock()
	at, ok := m.events[name]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return time.Since(at)
}

// Snapshot flattens counters and gauges into one map keyed by metric name.
// Timers appear as "<name>.avg_ms".
func (m *MetricsCollector) Snapshot() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64, len(m.counters)+len(m.gauges)+len(m.timers))
	for name, v := range m.counters {
		out[name] = float64(v)
	}
	maps.Copy(out, m.gauges)
	for name, t := range m.timers {
		out[name+".avg_ms"] = float64(t.mean()) / float64(time.Millisecond)
	}
	return out
}
