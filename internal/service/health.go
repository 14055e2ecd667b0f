package service

import (
	"time"

	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Success rate thresholds across all remote calls.
const (
	healthyRate  = 0.9
	degradedRate = 0.5
)

// RemoteHealth summarizes one model endpoint.
type RemoteHealth struct {
	Calls        int64   `json:"calls"`
	Failures     int64   `json:"failures"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	P95LatencyMS float64 `json:"p95_latency_ms"`
}

// PipelineHealth summarizes document runs.
type PipelineHealth struct {
	Runs             int64   `json:"runs"`
	InputErrors      int64   `json:"input_errors"`
	RankingFailures  int64   `json:"ranking_failures"`
	RecursionLimits  int64   `json:"recursion_limits"`
	ChunksProcessed  int64   `json:"chunks_processed"`
	AvgLatencyMS     float64 `json:"avg_latency_ms"`
	SecondsSinceLast float64 `json:"seconds_since_last_run"`
}

// CacheHealth summarizes the result cache.
type CacheHealth struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// HealthReport is the service's self-assessment.
type HealthReport struct {
	Status    string                  `json:"status"`
	Remote    map[string]RemoteHealth `json:"remote"`
	Pipeline  PipelineHealth          `json:"pipeline"`
	Cache     CacheHealth             `json:"cache"`
	Metrics   map[string]float64      `json:"metrics"`
	CheckedAt time.Time               `json:"checked_at"`
}

type remoteMetrics struct {
	calls, failures, latency string
}

var remoteServices = map[string]remoteMetrics{
	providers.ServiceChat:          {telemetry.MetricChatCalls, telemetry.MetricChatFailures, telemetry.MetricChatLatency},
	providers.ServiceSummarization: {telemetry.MetricSummarizeCalls, telemetry.MetricSummarizeFailures, telemetry.MetricSummarizeLatency},
	providers.ServiceEmbedding:     {telemetry.MetricEmbedCalls, telemetry.MetricEmbedFailures, telemetry.MetricEmbedLatency},
}

// Health builds a report from the collected metrics and publishes each
// endpoint's success rate as a gauge.
func (s *Service) Health() *HealthReport {
	m := s.metrics
	report := &HealthReport{
		Remote:    make(map[string]RemoteHealth, len(remoteServices)),
		CheckedAt: time.Now().UTC(),
	}

	var calls, failures int64
	for name, names := range remoteServices {
		h := RemoteHealth{
			Calls:        m.GetCounter(names.calls),
			Failures:     m.GetCounter(names.failures),
			SuccessRate:  1,
			AvgLatencyMS: millis(m.GetTimerAverage(names.latency)),
			P95LatencyMS: millis(m.GetTimerP95(names.latency)),
		}
		if h.Calls > 0 {
			h.SuccessRate = float64(h.Calls-h.Failures) / float64(h.Calls)
		}
		m.SetGauge(telemetry.MetricRemoteHealthPrefix+name, h.SuccessRate)
		report.Remote[name] = h
		calls += h.Calls
		failures += h.Failures
	}
	report.Status = status(calls, failures)

	report.Pipeline = PipelineHealth{
		Runs:            m.GetCounter(telemetry.MetricPipelineRuns),
		InputErrors:     m.GetCounter(telemetry.MetricPipelineInputError),
		RankingFailures: m.GetCounter(telemetry.MetricRankingFailures),
		RecursionLimits: m.GetCounter(telemetry.MetricRecursionDepthHit),
		ChunksProcessed: m.GetCounter(telemetry.MetricChunksProcessed),
		AvgLatencyMS:    millis(m.GetTimerAverage(telemetry.MetricPipelineLatency)),
	}
	if since := m.GetTimeSince(telemetry.MetricLastRun); since > 0 {
		report.Pipeline.SecondsSinceLast = since.Seconds()
	}

	report.Cache = CacheHealth{
		Hits:   m.GetCounter(telemetry.MetricCacheHits),
		Misses: m.GetCounter(telemetry.MetricCacheMisses),
		Size:   s.cache.Len(),
	}
	report.Metrics = m.Snapshot()
	return report
}

func status(calls, failures int64) string {
	if calls == 0 {
		return StatusHealthy
	}
	rate := float64(calls-failures) / float64(calls)
	switch {
	case rate >= healthyRate:
		return StatusHealthy
	case rate >= degradedRate:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
