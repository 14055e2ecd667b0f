// Package summarizer produces the abstractive body summary of a document,
// compressing inputs larger than the model window by recursive
// chunk-and-reduce.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/tokenizer"
	"golang.org/x/sync/errgroup"
)

// Fixed model and chunking constants.
const (
	ModelMaxTokens    = 1024
	SafetyBuffer      = 50
	InputTokenLimit   = ModelMaxTokens - SafetyBuffer
	MaxRecursionDepth = 3
	ChunkSize         = 800
	ChunkOverlap      = 100
	ChunkStride       = ChunkSize - ChunkOverlap

	// Output bounds for a single chunk summary.
	ChunkMinLength = 20
	ChunkMaxLength = 100

	tokensPerWord = 1.3

	// DefaultChunkConcurrency caps in-flight chunk calls per level.
	DefaultChunkConcurrency = 4
)

// WordRange is a target summary length in words.
type WordRange struct {
	Min int
	Max int
}

// DefaultTarget is the body summary length used by the pipeline.
var DefaultTarget = WordRange{Min: 150, Max: 250}

// TokenParams converts the word range to model length parameters. The
// upper bound is clamped to InputTokenLimit.
func (w WordRange) TokenParams() providers.SummarizationParams {
	maxTokens := int(math.Floor(float64(w.Max) * tokensPerWord))
	if maxTokens > InputTokenLimit {
		maxTokens = InputTokenLimit
	}
	return providers.SummarizationParams{
		MinLength: int(math.Ceil(float64(w.Min) * tokensPerWord)),
		MaxLength: maxTokens,
	}
}

// Summarization failures. Use FailureText to render them for display.
var (
	ErrTokenizer     = errors.New("tokenizer unavailable")
	ErrSummaryFailed = errors.New("summary request failed")
	ErrEmptySummary  = errors.New("summary text missing")
	ErrChunkFailed   = errors.New("intermediate summary failed")
	ErrNoContent     = errors.New("no intermediate summaries generated")
	ErrMaxDepth      = errors.New("max recursion depth reached")
)

// Abstractive summarizes text into a target word range.
type Abstractive struct {
	model       providers.Summarizer
	tok         tokenizer.Tokenizer
	concurrency int
	metrics     *telemetry.MetricsCollector
	logger      *slog.Logger
}

// Option configures an Abstractive summarizer.
type Option func(*Abstractive)

// WithConcurrency sets how many chunk calls of one level run at once.
func WithConcurrency(n int) Option {
	return func(a *Abstractive) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithMetrics records chunk and recursion metrics.
func WithMetrics(m *telemetry.MetricsCollector) Option {
	return func(a *Abstractive) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Abstractive) { a.logger = l }
}

// NewAbstractive creates a summarizer over a remote model and tokenizer.
func NewAbstractive(model providers.Summarizer, tok tokenizer.Tokenizer, opts ...Option) *Abstractive {
	a := &Abstractive{
		model:       model,
		tok:         tok,
		concurrency: DefaultChunkConcurrency,
		metrics:     telemetry.NewMetricsCollector(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize returns the summary of text. Inputs over InputTokenLimit are
// split into overlapping windows whose summaries are joined and summarized
// again, at most MaxRecursionDepth times.
func (a *Abstractive) Summarize(ctx context.Context, text string, target WordRange) (string, error) {
	return a.summarize(ctx, text, target, 0)
}

func (a *Abstractive) summarize(ctx context.Context, text string, target WordRange, depth int) (string, error) {
	tokens, err := a.tok.Encode(text)
	if err != nil {
		return "", errortypes.InternalError(fmt.Errorf("%w: %w", ErrTokenizer, err), "cannot count tokens")
	}

	n := tokens.Len()
	if n <= InputTokenLimit {
		return a.single(ctx, text, target.TokenParams())
	}

	if depth >= MaxRecursionDepth {
		a.metrics.IncrementCounter(telemetry.MetricRecursionDepthHit, 1)
		return "", errortypes.RecursionLimitError(ErrMaxDepth, "body summary did not converge").
			WithField("depth", depth).
			WithField("tokens", n)
	}

	chunks := chunk(tokens)
	a.logger.Debug("Summarizing in chunks", "depth", depth, "tokens", n, "chunks", len(chunks))

	summaries, err := a.summarizeChunks(ctx, chunks)
	if err != nil {
		return "", err
	}
	return a.summarize(ctx, strings.Join(summaries, " "), target, depth+1)
}

func (a *Abstractive) single(ctx context.Context, text string, params providers.SummarizationParams) (string, error) {
	out, err := a.model.Summarize(ctx, text, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummaryFailed, err)
	}
	if out == "" {
		return "", errortypes.RemoteCallError(ErrEmptySummary, "summarization returned no text").
			WithField("service", providers.ServiceSummarization)
	}
	return out, nil
}

// chunk slides a ChunkSize window over tokens with ChunkStride steps. The
// last window ends exactly at the final token, so no trailing window is
// empty or contained in its predecessor.
func chunk(tokens tokenizer.Tokens) []string {
	n := tokens.Len()
	var chunks []string
	for start := 0; ; start += ChunkStride {
		end := min(start+ChunkSize, n)
		chunks = append(chunks, tokens.Text(start, end))
		if end == n {
			break
		}
	}
	return chunks
}

// summarizeChunks summarizes every chunk and returns the non-empty
// results in chunk order. Any failed call fails the whole level.
func (a *Abstractive) summarizeChunks(ctx context.Context, chunks []string) ([]string, error) {
	results := make([]string, len(chunks))
	params := providers.SummarizationParams{MinLength: ChunkMinLength, MaxLength: ChunkMaxLength}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := a.model.Summarize(gctx, chunk, params)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %w", ErrChunkFailed, i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.metrics.IncrementCounter(telemetry.MetricChunksProcessed, int64(len(chunks)))

	summaries := results[:0]
	for _, s := range results {
		if s != "" {
			summaries = append(summaries, s)
		}
	}
	if len(summaries) == 0 {
		return nil, errortypes.RemoteCallError(ErrNoContent, "chunk summaries were all empty").
			WithField("service", providers.ServiceSummarization)
	}
	return summaries, nil
}
