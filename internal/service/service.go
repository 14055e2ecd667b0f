// Package service is the request-level entry point shared by the MCP and
// HTTP surfaces: it turns a text, URL or PDF into a session's current
// summary.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Theomnitron/SummaRead/internal/cache"
	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/export"
	"github.com/Theomnitron/SummaRead/internal/extract"
	"github.com/Theomnitron/SummaRead/internal/generator"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/Theomnitron/SummaRead/internal/sessionstore"
	"github.com/Theomnitron/SummaRead/internal/speech"
	"github.com/Theomnitron/SummaRead/internal/summarizer"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/textnorm"
	"github.com/Theomnitron/SummaRead/internal/util"
)

// Source names where a document came from.
type Source string

const (
	SourceText Source = "text"
	SourceURL  Source = "url"
	SourcePDF  Source = "pdf"
)

// DocumentSummarizer summarizes text already passed through textnorm.Clean.
type DocumentSummarizer interface {
	SummarizeCleaned(ctx context.Context, cleaned string, sentences []string) (*pipeline.SummaryResult, error)
}

// URLFetcher returns the readable text of a web page.
type URLFetcher interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// PDFReader returns the text of a PDF file.
type PDFReader interface {
	ExtractBytes(data []byte) (string, error)
}

// Options wires a Service.
type Options struct {
	Summarizer DocumentSummarizer
	URLs       URLFetcher
	PDFs       PDFReader
	Store      sessionstore.Store
	Cache      *cache.Results
	MinWords   int
	SessionTTL time.Duration
	Metrics    *telemetry.MetricsCollector
	Logger     *slog.Logger
}

// Service runs extraction, the length gate, the cache and the pipeline,
// then stores the result as the session's current summary.
type Service struct {
	summarizer DocumentSummarizer
	urls       URLFetcher
	pdfs       PDFReader
	store      sessionstore.Store
	cache      *cache.Results
	gate       extract.Gate
	sessionTTL time.Duration
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// New creates a Service. Summarizer and Store are required.
func New(opts Options) (*Service, error) {
	if opts.Summarizer == nil || opts.Store == nil {
		return nil, errortypes.ConfigError(errors.New("missing dependencies"), "service initialization failed")
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetricsCollector()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = sessionstore.DefaultTTL
	}
	return &Service{
		summarizer: opts.Summarizer,
		urls:       opts.URLs,
		pdfs:       opts.PDFs,
		store:      opts.Store,
		cache:      opts.Cache,
		gate:       extract.Gate{MinWords: opts.MinWords},
		sessionTTL: opts.SessionTTL,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}, nil
}

// Metrics returns the collector the service reports into.
func (s *Service) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// SummarizeText summarizes pasted text. An empty sessionID starts a new session.
func (s *Service) SummarizeText(ctx context.Context, sessionID, text string) (*sessionstore.Record, error) {
	return s.summarize(ctx, sessionID, SourceText, text)
}

// SummarizeURL fetches a web page and summarizes its text.
func (s *Service) SummarizeURL(ctx context.Context, sessionID, rawURL string) (*sessionstore.Record, error) {
	if s.urls == nil {
		return nil, errortypes.ConfigError(errors.New("url extraction disabled"), "cannot summarize url")
	}
	text, err := s.urls.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, sessionID, SourceURL, text)
}

// SummarizePDF extracts a PDF's text and summarizes it.
func (s *Service) SummarizePDF(ctx context.Context, sessionID string, data []byte) (*sessionstore.Record, error) {
	if s.pdfs == nil {
		return nil, errortypes.ConfigError(errors.New("pdf extraction disabled"), "cannot summarize pdf")
	}
	text, err := s.pdfs.ExtractBytes(data)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, sessionID, SourcePDF, text)
}

func (s *Service) summarize(ctx context.Context, sessionID string, source Source, raw string) (*sessionstore.Record, error) {
	if sessionID == "" {
		sessionID = sessionstore.NewSessionID()
	}
	if err := sessionstore.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	log := s.logger.With("session_id", sessionID, "source", string(source))

	if err := s.gate.Check(raw); err != nil {
		s.metrics.IncrementCounter(telemetry.MetricPipelineInputError, 1)
		log.Info("Document rejected", "error", err)
		return nil, err
	}

	cleaned, sentences := textnorm.Clean(raw)
	hash := util.DocumentHash(cleaned)

	result, hit := s.cache.Get(hash)
	if hit {
		log.Debug("Serving cached summary", "document", util.ShortHash(cleaned))
	} else {
		var err error
		result, err = s.summarizer.SummarizeCleaned(ctx, cleaned, sentences)
		if err != nil {
			return nil, err
		}
		if Complete(result) {
			s.cache.Put(hash, result)
		}
	}

	rec := sessionstore.NewRecord(sessionID, hash, result, s.sessionTTL)
	if err := s.store.Put(ctx, rec); err != nil {
		errortypes.LogError(log, err)
		return nil, err
	}
	log.Info("Summary stored", "result_id", rec.ResultID, "cached", hit)
	return rec, nil
}

// Complete reports whether every field of r holds generated content rather
// than a failure placeholder. Only complete results are cached.
func Complete(r *pipeline.SummaryResult) bool {
	if r == nil {
		return false
	}
	if r.Heading == generator.FailureHeading || summarizer.IsFailureText(r.BodySummary) {
		return false
	}
	if len(r.Outline.MainPoints) == 0 || len(r.Outline.KeyDiscoveries) == 0 {
		return false
	}
	switch r.Outline.MainPoints[0] {
	case pipeline.FailureNoSentences, pipeline.FailureEmbeddings:
		return false
	}
	return true
}

// Current returns the session's current summary.
func (s *Service) Current(ctx context.Context, sessionID string) (*sessionstore.Record, error) {
	return s.store.Get(ctx, sessionID)
}

// Speech returns the session's summary laid out for text-to-speech.
func (s *Service) Speech(ctx context.Context, sessionID, accent string) (*speech.Script, error) {
	// Reject the accent before touching the store.
	if _, err := speech.LookupAccent(accent); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return speech.Build(rec.Result, accent)
}

// ExportPDF renders the session's summary as a PDF.
func (s *Service) ExportPDF(ctx context.Context, sessionID string) ([]byte, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return export.PDF(rec.Result)
}

// PurgeExpired drops expired sessions from the store.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.store.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Purged expired sessions", "count", n)
	}
	return n, nil
}
