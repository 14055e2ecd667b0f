package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/util"
	"github.com/tidwall/gjson"
)

// HFSummarizer calls a hosted sequence-to-sequence summarization model.
type HFSummarizer struct {
	url        string
	token      string
	httpClient *http.Client
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

type summarizationRequest struct {
	Inputs     string                  `json:"inputs"`
	Parameters summarizationParameters `json:"parameters"`
}

type summarizationParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

// NewHFSummarizer creates a summarizer posting to cfg.BaseURL.
func NewHFSummarizer(cfg Config, metrics *telemetry.MetricsCollector, logger *slog.Logger) *HFSummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &HFSummarizer{
		url:        cfg.BaseURL,
		token:      cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.timeout()},
		metrics:    metrics,
		logger:     logger,
	}
}

// Summarize implements Summarizer with deterministic decoding. The
// response must be a non-empty JSON array; the summary_text of its first
// element is returned, or "" when that element has none.
func (s *HFSummarizer) Summarize(ctx context.Context, inputs string, params SummarizationParams) (summary string, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveCall(telemetry.MetricSummarizeCalls, telemetry.MetricSummarizeFailures, telemetry.MetricSummarizeLatency, start, err)
	}()

	body, err := util.PostJSON(ctx, s.httpClient, s.url, s.token, summarizationRequest{
		Inputs: inputs,
		Parameters: summarizationParameters{
			MaxLength: params.MaxLength,
			MinLength: params.MinLength,
			DoSample:  false,
		},
	})
	if err != nil {
		s.logger.Warn("Summarization request failed", "error", err)
		return "", errortypes.RemoteCallError(err, "summarization request failed").WithField("service", ServiceSummarization)
	}

	if !gjson.ValidBytes(body) {
		return "", malformedSummary("response is not JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() || len(root.Array()) == 0 {
		return "", malformedSummary("expected a non-empty array")
	}
	return root.Get("0.summary_text").String(), nil
}

func malformedSummary(reason string) error {
	return errortypes.RemoteCallError(errors.New(reason), "summarization response invalid").
		WithField("service", ServiceSummarization)
}
