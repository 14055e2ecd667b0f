// Package httpapi serves the summary service as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Theomnitron/SummaRead/internal/service"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *service.Service, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewController(svc, logger)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", h.Health)
		v1.POST("/sessions", h.CreateSession)
		v1.POST("/sessions/:session/summaries", h.Summarize)
		v1.POST("/sessions/:session/summaries/pdf", h.SummarizePDF)
		v1.GET("/sessions/:session/summary", h.GetSummary)
		v1.GET("/sessions/:session/summary.pdf", h.ExportPDF)
		v1.GET("/sessions/:session/speech", h.Speech)
	}
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// Server runs the router on an address until its context ends.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// NewServer creates a server for addr.
func NewServer(addr string, svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(svc, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down HTTP API")
	return s.http.Shutdown(shutdownCtx)
}
