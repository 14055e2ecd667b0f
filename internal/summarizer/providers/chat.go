package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ChatClient calls an OpenAI-compatible chat completion API. Retries are
// disabled; a failed call is reported once.
type ChatClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
	metrics *telemetry.MetricsCollector
	logger  *slog.Logger
}

// NewChatClient builds a chat client from cfg.
func NewChatClient(cfg Config, metrics *telemetry.MetricsCollector, logger *slog.Logger) *ChatClient {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ChatClient{
		client:  openai.NewClient(opts...),
		model:   cfg.ModelID,
		timeout: cfg.timeout(),
		metrics: metrics,
		logger:  logger,
	}
}

// Complete implements Completer. The content of the first choice is
// returned as-is; a missing choice or empty content is an error.
func (c *ChatClient) Complete(ctx context.Context, req ChatRequest) (content string, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveCall(telemetry.MetricChatCalls, telemetry.MetricChatFailures, telemetry.MetricChatLatency, start, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}
	if len(req.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Warn("Chat completion failed", "model", c.model, "error", err)
		return "", errortypes.RemoteCallError(err, "chat completion failed").WithField("service", ServiceChat)
	}

	if len(resp.Choices) == 0 {
		return "", errortypes.RemoteCallError(errors.New("chat completion choices are missing"), "chat completion invalid").
			WithField("service", ServiceChat)
	}
	content = resp.Choices[0].Message.Content
	if content == "" {
		return "", errortypes.RemoteCallError(errors.New("chat completion content is missing"), "chat completion invalid").
			WithField("service", ServiceChat)
	}
	return content, nil
}
