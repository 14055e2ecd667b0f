// Package summaread wires the SummaRead summarization service: remote
// model adapters, the summary pipeline, session storage and the MCP and
// HTTP surfaces.
package summaread

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Theomnitron/SummaRead/internal/cache"
	"github.com/Theomnitron/SummaRead/internal/config"
	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/extract"
	"github.com/Theomnitron/SummaRead/internal/generator"
	"github.com/Theomnitron/SummaRead/internal/httpapi"
	"github.com/Theomnitron/SummaRead/internal/logger"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/Theomnitron/SummaRead/internal/scheduler"
	"github.com/Theomnitron/SummaRead/internal/server"
	"github.com/Theomnitron/SummaRead/internal/service"
	"github.com/Theomnitron/SummaRead/internal/sessionstore"
	"github.com/Theomnitron/SummaRead/internal/summarizer"
	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/tokenizer"
	"github.com/Theomnitron/SummaRead/internal/vector"
)

// Config represents the configuration for the SummaRead service.
type Config = config.Config

// SummaryResult is the structured summary of one document.
type SummaryResult = pipeline.SummaryResult

// Components are the wired collaborators behind a Server.
type Components struct {
	Metrics      *telemetry.MetricsCollector
	Embedder     vector.Embedder
	Orchestrator *pipeline.Orchestrator
	Store        sessionstore.Store
	Service      *service.Service
}

// Server represents the SummaRead service.
type Server struct {
	config     *Config
	components *Components
	toolServer server.SummaryToolServer
	httpServer *httpapi.Server
	scheduler  *scheduler.Scheduler
	logger     *slog.Logger

	mu         sync.Mutex
	httpCancel context.CancelFunc
	httpDone   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config         // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string          // Path to config file. Used if Config is nil.
	Logger     *slog.Logger    // External logger. If nil, one is built from the config.
	Context    context.Context // Bounds tool calls and scheduled jobs. Defaults to Background.
}

// DefaultConfig returns the default configuration for the SummaRead service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// NewServer creates a SummaRead Server with the given options.
func NewServer(opts ServerOptions) (*Server, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if opts.ConfigPath != "" {
			cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return nil, errortypes.ConfigError(err, "failed to load configuration")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errortypes.ConfigError(err, "invalid configuration")
	}

	log := opts.Logger
	if log == nil {
		lc := logger.DefaultConfig()
		lc.Level = cfg.Logging.Level
		lc.Format = cfg.Logging.Format
		log = logger.New(lc)
	}

	components, err := CreateComponents(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	toolServer := server.NewSummaryToolServer(ctx, components.Service, logger.Component(log, "mcp"))
	if err := toolServer.Initialize(); err != nil {
		components.Store.Close()
		return nil, errortypes.ConfigError(err, "failed to initialize MCP tool server")
	}

	s := &Server{
		config:     cfg,
		components: components,
		toolServer: toolServer,
		scheduler:  scheduler.New(ctx, components.Service, logger.Component(log, "scheduler")),
		logger:     log,
	}
	if cfg.HTTP.Addr != "" {
		s.httpServer = httpapi.NewServer(cfg.HTTP.Addr, components.Service, logger.Component(log, "http"))
	}

	log.Info("SummaRead server initialized", "store", cfg.Store.Driver, "embedder", cfg.Embedder.Provider, "http", cfg.HTTP.Addr != "")
	return s, nil
}

// CreateComponents builds the pipeline and its storage from cfg without
// starting any transport.
func CreateComponents(ctx context.Context, cfg *Config, log *slog.Logger) (*Components, error) {
	if log == nil {
		log = slog.Default()
	}
	metrics := telemetry.NewMetricsCollector()

	if cfg.Remote.APIToken == "" {
		log.Warn("No API token configured; remote model calls will be rejected")
	}
	if err := extract.SetLicense(cfg.PDF.LicenseKey); err != nil {
		return nil, errortypes.ConfigError(err, "failed to set PDF license")
	}

	remote := providers.Config{
		APIKey:  cfg.Remote.APIToken,
		Timeout: cfg.Remote.Timeout,
	}

	chatCfg := remote
	chatCfg.BaseURL = cfg.Remote.ChatURL
	chatCfg.ModelID = cfg.Remote.ChatModel
	chat := providers.NewChatClient(chatCfg, metrics, logger.Component(log, "chat"))

	sumCfg := remote
	sumCfg.BaseURL = cfg.Remote.SummarizationURL
	model := providers.NewHFSummarizer(sumCfg, metrics, logger.Component(log, "summarization"))

	var emb vector.Embedder
	switch cfg.Embedder.Provider {
	case "mock":
		emb = vector.NewMockEmbedder(cfg.Embedder.Dimensions)
	default:
		emb = vector.NewHFEmbedder(cfg.Remote.EmbeddingURL, cfg.Remote.APIToken, cfg.Remote.Timeout, metrics, logger.Component(log, "embedding"))
	}
	if err := emb.Initialize(); err != nil {
		return nil, errortypes.ConfigError(err, "failed to initialize embedder")
	}

	tok := tokenizer.New(cfg.Tokenizer.Path, logger.Component(log, "tokenizer"))

	orchestrator := pipeline.NewOrchestrator(pipeline.Components{
		Heading: generator.NewHeadlineGenerator(chat, logger.Component(log, "heading")),
		Body: summarizer.NewAbstractive(model, tok,
			summarizer.WithConcurrency(cfg.Pipeline.ChunkConcurrency),
			summarizer.WithMetrics(metrics),
			summarizer.WithLogger(logger.Component(log, "body"))),
		Ranker: vector.NewRanker(emb, logger.Component(log, "ranker")),
		Facts:  generator.NewKeyFactGenerator(chat, logger.Component(log, "keyfacts")),
	}, cfg.Pipeline.TaskConcurrency, metrics, logger.Component(log, "pipeline"))

	store, err := sessionstore.Open(ctx, sessionstore.Options{
		Driver:        cfg.Store.Driver,
		SQLitePath:    cfg.Store.SQLitePath,
		RedisAddr:     cfg.Store.RedisAddr,
		RedisPassword: cfg.Store.RedisPassword,
		RedisDB:       cfg.Store.RedisDB,
		TTL:           cfg.Store.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	svc, err := service.New(service.Options{
		Summarizer: orchestrator,
		URLs:       extract.NewURLExtractor(extract.DefaultFetchTimeout, logger.Component(log, "extract")),
		PDFs:       extract.NewPDFExtractor(logger.Component(log, "extract")),
		Store:      store,
		Cache:      cache.New(cfg.Pipeline.CacheCapacity, cfg.Pipeline.CacheTTL, metrics),
		MinWords:   cfg.Pipeline.MinWords,
		SessionTTL: cfg.Store.SessionTTL,
		Metrics:    metrics,
		Logger:     logger.Component(log, "service"),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Info("Components successfully initialized")
	return &Components{
		Metrics:      metrics,
		Embedder:     emb,
		Orchestrator: orchestrator,
		Store:        store,
		Service:      svc,
	}, nil
}

// Service returns the request-level service, for embedding SummaRead in
// another program.
func (s *Server) Service() *service.Service {
	return s.components.Service
}

// Start runs the scheduler and the HTTP API in the background, then
// serves MCP on stdio. When stdin closes while the HTTP API is enabled,
// Start returns only after the API has stopped.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting SummaRead service")
	if err := s.scheduler.Start(); err != nil {
		return errortypes.InternalError(err, "failed to start scheduler")
	}

	done := s.startHTTP(ctx)

	if err := s.toolServer.Start(); err != nil {
		return err
	}
	if done != nil {
		s.logger.Info("MCP stdio closed; HTTP API keeps serving")
		<-done
	}
	return nil
}

// startHTTP launches the HTTP API and returns a channel closed once it has
// shut down, or nil when the API is disabled.
func (s *Server) startHTTP(ctx context.Context) <-chan struct{} {
	if s.httpServer == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpDone != nil {
		return s.httpDone
	}

	httpCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.httpCancel = cancel
	s.httpDone = done

	go func() {
		defer close(done)
		if err := s.httpServer.Run(httpCtx); err != nil {
			s.logger.Error("HTTP API stopped", "error", err)
		}
	}()
	return done
}

// stopHTTP shuts the HTTP API down and waits for in-flight requests.
func (s *Server) stopHTTP() {
	s.mu.Lock()
	cancel, done := s.httpCancel, s.httpDone
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stop stops the background jobs and transports, then closes the store.
// Calls after the first return the first result.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() { s.stopErr = s.stop() })
	return s.stopErr
}

func (s *Server) stop() error {
	s.logger.Info("Stopping SummaRead service")
	s.scheduler.Stop()
	s.stopHTTP()

	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.components.Store.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return errortypes.DatabaseError(err, "failed to close store")
	}

	s.logger.Info("SummaRead service stopped")
	return nil
}
