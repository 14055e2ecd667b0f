package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/util"
	"github.com/tidwall/gjson"
)

// ErrMalformedEmbeddings is returned when the endpoint answers with
// anything other than one numeric vector per input.
var ErrMalformedEmbeddings = errors.New("malformed embedding response")

// HFEmbedder calls a feature-extraction inference endpoint.
type HFEmbedder struct {
	url        string
	token      string
	httpClient *http.Client
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

type embeddingRequest struct {
	Inputs     []string            `json:"inputs"`
	Parameters embeddingParameters `json:"parameters"`
}

type embeddingParameters struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHFEmbedder creates an embedder for url. Every call is bounded by timeout.
func NewHFEmbedder(url, token string, timeout time.Duration, metrics *telemetry.MetricsCollector, logger *slog.Logger) *HFEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &HFEmbedder{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Initialize checks that an endpoint is configured.
func (e *HFEmbedder) Initialize() error {
	if e.url == "" {
		return errortypes.ConfigError(errors.New("embedding url is empty"), "embedder not configured")
	}
	return nil
}

// Embed implements Embedder.
func (e *HFEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveCall(telemetry.MetricEmbedCalls, telemetry.MetricEmbedFailures, telemetry.MetricEmbedLatency, start, err)
	}()

	body, err := util.PostJSON(ctx, e.httpClient, e.url, e.token, embeddingRequest{
		Inputs:     texts,
		Parameters: embeddingParameters{WaitForModel: true},
	})
	if err != nil {
		e.logger.Warn("Embedding request failed", "error", err, "sentences", len(texts))
		return nil, errortypes.RemoteCallError(err, "embedding request failed").WithField("service", "embedding")
	}

	vectors, err = parseEmbeddings(body, len(texts))
	if err != nil {
		return nil, errortypes.RemoteCallError(err, "embedding response invalid").WithField("service", "embedding")
	}
	return vectors, nil
}

// parseEmbeddings validates that body is an array of want numeric arrays.
func parseEmbeddings(body []byte, want int) ([][]float32, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: not JSON", ErrMalformedEmbeddings)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformedEmbeddings)
	}

	rows := root.Array()
	if len(rows) != want {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrMalformedEmbeddings, len(rows), want)
	}

	out := make([][]float32, len(rows))
	for i, row := range rows {
		if !row.IsArray() {
			return nil, fmt.Errorf("%w: row %d is not an array", ErrMalformedEmbeddings, i)
		}
		values := row.Array()
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: row %d is empty", ErrMalformedEmbeddings, i)
		}
		vec := make([]float32, len(values))
		for j, v := range values {
			if v.Type != gjson.Number {
				return nil, fmt.Errorf("%w: row %d holds a non-number", ErrMalformedEmbeddings, i)
			}
			vec[j] = float32(v.Float())
		}
		out[i] = vec
	}
	return out, nil
}
