// Package server provides the MCP server implementation for SummaRead.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/export"
	"github.com/Theomnitron/SummaRead/internal/service"
	"github.com/Theomnitron/SummaRead/internal/tools"
	"github.com/localrivet/gomcp/server"
)

// ErrServerNotInitialized is returned by Start before Initialize.
var ErrServerNotInitialized = errors.New("server not initialized")

// MCPSummaryToolServer implements SummaryToolServer over the stdio transport.
type MCPSummaryToolServer struct {
	ctx       context.Context
	svc       *service.Service
	mcpServer server.Server
	logger    *slog.Logger
}

// NewSummaryToolServer creates a tool server. ctx bounds every tool call.
func NewSummaryToolServer(ctx context.Context, svc *service.Service, logger *slog.Logger) *MCPSummaryToolServer {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPSummaryToolServer{ctx: ctx, svc: svc, logger: logger}
}

// Initialize registers the tools.
func (s *MCPSummaryToolServer) Initialize() error {
	s.logger.Info("Initializing MCP summary tool server")

	if s.svc == nil {
		return errortypes.ConfigError(errors.New("missing dependencies"), "server initialization failed")
	}

	srv := server.NewServer("summaread")

	srv = srv.Tool(tools.ToolSummarizeText, "Summarize a document given as text into a heading, body summary, main points and key discoveries",
		s.handleSummarizeText)
	srv = srv.Tool(tools.ToolSummarizeURL, "Fetch a web page and summarize its main content",
		s.handleSummarizeURL)
	srv = srv.Tool(tools.ToolSummarizePDF, "Summarize a searchable PDF given as base64",
		s.handleSummarizePDF)
	srv = srv.Tool(tools.ToolGetSummary, "Return the current summary of a session",
		s.handleGetSummary)
	srv = srv.Tool(tools.ToolSpeechScript, "Lay out the session's summary for text-to-speech in a chosen English accent",
		s.handleSpeechScript)
	srv = srv.Tool(tools.ToolExportSummaryPDF, "Export the session's summary as a base64 PDF",
		s.handleExportSummaryPDF)
	srv = srv.Tool(tools.ToolHealthReport, "Report remote model health and pipeline statistics",
		s.handleHealthReport)

	s.mcpServer = srv
	s.logger.Info("MCP summary tool server initialized", "tool_count", 7)
	return nil
}

// Start serves tool calls on stdio until stdin closes.
func (s *MCPSummaryToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	s.logger.Info("Starting MCP summary tool server")
	return s.mcpServer.AsStdio().Run()
}

// Stop is a no-op; the stdio transport ends with its input.
func (s *MCPSummaryToolServer) Stop() error {
	s.logger.Info("Stopping MCP summary tool server")
	return nil
}

// failure logs err and renders it for a tool response.
func (s *MCPSummaryToolServer) failure(tool string, err error) string {
	errortypes.LogError(s.logger.With("tool", tool), err)
	return err.Error()
}

func (s *MCPSummaryToolServer) handleSummarizeText(_ *server.Context, req tools.SummarizeTextRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_text request", "text_length", len(req.Text))

	rec, err := s.svc.SummarizeText(s.ctx, req.SessionID, req.Text)
	if err != nil {
		return tools.SummaryResponse{Status: tools.StatusError, Error: s.failure(tools.ToolSummarizeText, err)}, nil
	}
	return tools.NewSummaryResponse(rec), nil
}

func (s *MCPSummaryToolServer) handleSummarizeURL(_ *server.Context, req tools.SummarizeURLRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_url request", "url", req.URL)

	rec, err := s.svc.SummarizeURL(s.ctx, req.SessionID, req.URL)
	if err != nil {
		return tools.SummaryResponse{Status: tools.StatusError, Error: s.failure(tools.ToolSummarizeURL, err)}, nil
	}
	return tools.NewSummaryResponse(rec), nil
}

func (s *MCPSummaryToolServer) handleSummarizePDF(_ *server.Context, req tools.SummarizePDFRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_pdf request", "encoded_length", len(req.PDFBase64))

	data, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	if err != nil {
		err = errortypes.InputError(err, "pdf_base64 is not valid base64")
		return tools.SummaryResponse{Status: tools.StatusError, Error: s.failure(tools.ToolSummarizePDF, err)}, nil
	}

	rec, err := s.svc.SummarizePDF(s.ctx, req.SessionID, data)
	if err != nil {
		return tools.SummaryResponse{Status: tools.StatusError, Error: s.failure(tools.ToolSummarizePDF, err)}, nil
	}
	return tools.NewSummaryResponse(rec), nil
}

func (s *MCPSummaryToolServer) handleGetSummary(_ *server.Context, req tools.GetSummaryRequest) (tools.SummaryResponse, error) {
	rec, err := s.svc.Current(s.ctx, req.SessionID)
	if err != nil {
		return tools.SummaryResponse{Status: tools.StatusError, Error: s.failure(tools.ToolGetSummary, err)}, nil
	}
	return tools.NewSummaryResponse(rec), nil
}

func (s *MCPSummaryToolServer) handleSpeechScript(_ *server.Context, req tools.SpeechScriptRequest) (tools.SpeechScriptResponse, error) {
	script, err := s.svc.Speech(s.ctx, req.SessionID, req.Accent)
	if err != nil {
		return tools.SpeechScriptResponse{Status: tools.StatusError, Error: s.failure(tools.ToolSpeechScript, err)}, nil
	}
	return tools.SpeechScriptResponse{Status: tools.StatusSuccess, Script: script}, nil
}

func (s *MCPSummaryToolServer) handleExportSummaryPDF(_ *server.Context, req tools.ExportSummaryPDFRequest) (tools.ExportSummaryPDFResponse, error) {
	data, err := s.svc.ExportPDF(s.ctx, req.SessionID)
	if err != nil {
		return tools.ExportSummaryPDFResponse{Status: tools.StatusError, Error: s.failure(tools.ToolExportSummaryPDF, err)}, nil
	}
	return tools.ExportSummaryPDFResponse{
		Status:    tools.StatusSuccess,
		FileName:  export.FileName,
		PDFBase64: base64.StdEncoding.EncodeToString(data),
	}, nil
}

func (s *MCPSummaryToolServer) handleHealthReport(_ *server.Context, _ tools.HealthReportRequest) (tools.HealthReportResponse, error) {
	return tools.HealthReportResponse{Status: tools.StatusSuccess, Health: s.svc.Health()}, nil
}
