package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/summarizer"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/textnorm"
	"github.com/Theomnitron/SummaRead/internal/vector"
)

// ErrEmptyInput is the cause of the InputError returned for documents
// with no text left after cleaning.
var ErrEmptyInput = errors.New("input text is empty or contains only whitespace after cleaning")

// DefaultTaskConcurrency is one worker per summary field.
const DefaultTaskConcurrency = 4

// HeadingGenerator produces the summary heading.
type HeadingGenerator interface {
	Heading(ctx context.Context, text string) (string, error)
}

// BodySummarizer produces the abstractive body.
type BodySummarizer interface {
	Summarize(ctx context.Context, text string, target summarizer.WordRange) (string, error)
}

// MainPointRanker selects the extractive main points.
type MainPointRanker interface {
	RankMainPoints(ctx context.Context, sentences []string, k int) ([]string, error)
}

// KeyFactGenerator produces the key discoveries.
type KeyFactGenerator interface {
	KeyFacts(ctx context.Context, text string, n int) ([]string, error)
}

// Orchestrator runs the four summary tasks and assembles the result.
type Orchestrator struct {
	heading     HeadingGenerator
	body        BodySummarizer
	ranker      MainPointRanker
	facts       KeyFactGenerator
	target      summarizer.WordRange
	concurrency int
	metrics     *telemetry.MetricsCollector
	logger      *slog.Logger
}

// Components are the collaborators of an Orchestrator.
type Components struct {
	Heading HeadingGenerator
	Body    BodySummarizer
	Ranker  MainPointRanker
	Facts   KeyFactGenerator
}

// NewOrchestrator creates an orchestrator. concurrency <= 0 selects
// DefaultTaskConcurrency.
func NewOrchestrator(c Components, concurrency int, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultTaskConcurrency
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		heading:     c.Heading,
		body:        c.Body,
		ranker:      c.Ranker,
		facts:       c.Facts,
		target:      summarizer.DefaultTarget,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// SummarizeDocument cleans raw and summarizes it. Empty cleaned text is an
// InputError; every other failure is confined to its own field.
func (o *Orchestrator) SummarizeDocument(ctx context.Context, raw string) (*SummaryResult, error) {
	cleaned, sentences := textnorm.Clean(raw)
	return o.SummarizeCleaned(ctx, cleaned, sentences)
}

// SummarizeCleaned summarizes text already passed through textnorm.Clean.
func (o *Orchestrator) SummarizeCleaned(ctx context.Context, cleaned string, sentences []string) (*SummaryResult, error) {
	if cleaned == "" {
		o.metrics.IncrementCounter(telemetry.MetricPipelineInputError, 1)
		return nil, errortypes.InputError(ErrEmptyInput, "nothing to summarize")
	}

	start := time.Now()
	o.metrics.IncrementCounter(telemetry.MetricPipelineRuns, 1)
	defer func() {
		o.metrics.RecordTimer(telemetry.MetricPipelineLatency, time.Since(start))
		o.metrics.RecordTimestamp(telemetry.MetricLastRun)
	}()

	words := textnorm.CountWords(cleaned)
	numMain, numFacts := PointCounts(words)
	log := o.logger.With("words", words, "sentences", len(sentences))
	log.Info("Summarizing document", "main_points", numMain, "key_discoveries", numFacts)

	var (
		heading, body string
		mainPoints    []string
		keyFacts      []string
	)

	// Each task records its own degraded value, so there is no error to join.
	var wg sync.WaitGroup
	slots := make(chan struct{}, o.concurrency)
	run := func(task func()) {
		slots <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()
			task()
		}()
	}

	run(func() {
		h, err := o.heading.Heading(ctx, cleaned)
		if err != nil {
			log.Warn("Heading degraded", "error", err)
		}
		heading = h
	})
	run(func() {
		b, err := o.body.Summarize(ctx, cleaned, o.target)
		if err != nil {
			errortypes.LogError(log, err)
			b = summarizer.FailureText(err)
		}
		body = b
	})
	run(func() {
		points, err := o.ranker.RankMainPoints(ctx, sentences, numMain)
		if err != nil {
			o.metrics.IncrementCounter(telemetry.MetricRankingFailures, 1)
			log.Warn("Main points degraded", "error", err)
			points = []string{rankingPlaceholder(err)}
		}
		mainPoints = points
	})
	run(func() {
		facts, err := o.facts.KeyFacts(ctx, cleaned, numFacts)
		if err != nil {
			log.Warn("Key discoveries degraded", "error", err)
		}
		if facts == nil {
			facts = []string{}
		}
		keyFacts = facts
	})
	wg.Wait()

	return &SummaryResult{
		Heading:     heading,
		BodySummary: body,
		Outline: Outline{
			MainPoints:     mainPoints,
			KeyDiscoveries: keyFacts,
		},
	}, nil
}

func rankingPlaceholder(err error) string {
	if errors.Is(err, vector.ErrNoSentences) {
		return FailureNoSentences
	}
	return FailureEmbeddings
}
