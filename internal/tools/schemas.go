// Package tools defines the MCP tool names and the request and response
// schemas of the SummaRead tool server.
package tools

import (
	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/Theomnitron/SummaRead/internal/service"
	"github.com/Theomnitron/SummaRead/internal/sessionstore"
	"github.com/Theomnitron/SummaRead/internal/speech"
)

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolSummarizeURL is the name of the summarize_url MCP tool
	ToolSummarizeURL = "summarize_url"

	// ToolSummarizePDF is the name of the summarize_pdf MCP tool
	ToolSummarizePDF = "summarize_pdf"

	// ToolGetSummary is the name of the get_summary MCP tool
	ToolGetSummary = "get_summary"

	// ToolSpeechScript is the name of the speech_script MCP tool
	ToolSpeechScript = "speech_script"

	// ToolExportSummaryPDF is the name of the export_summary_pdf MCP tool
	ToolExportSummaryPDF = "export_summary_pdf"

	// ToolHealthReport is the name of the health_report MCP tool
	ToolHealthReport = "health_report"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SummarizeTextRequest defines the input schema for summarize_text tool
type SummarizeTextRequest struct {
	// SessionID selects the session whose current summary is replaced.
	// Empty starts a new session.
	SessionID string `json:"session_id,omitempty"`

	// Text is the document to summarize
	Text string `json:"text"`
}

// SummarizeURLRequest defines the input schema for summarize_url tool
type SummarizeURLRequest struct {
	SessionID string `json:"session_id,omitempty"`

	// URL is the web page to summarize; https:// is assumed when no scheme is given
	URL string `json:"url"`
}

// SummarizePDFRequest defines the input schema for summarize_pdf tool
type SummarizePDFRequest struct {
	SessionID string `json:"session_id,omitempty"`

	// PDFBase64 is the base64-encoded content of a searchable PDF
	PDFBase64 string `json:"pdf_base64"`
}

// SummaryResponse is the output schema of the summarize_* and get_summary tools
type SummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	SessionID string                  `json:"session_id,omitempty"`
	ResultID  string                  `json:"result_id,omitempty"`
	Summary   *pipeline.SummaryResult `json:"summary,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// NewSummaryResponse fills a success response from a stored record.
func NewSummaryResponse(rec *sessionstore.Record) SummaryResponse {
	return SummaryResponse{
		Status:    StatusSuccess,
		SessionID: rec.SessionID,
		ResultID:  rec.ResultID,
		Summary:   rec.Result,
	}
}

// GetSummaryRequest defines the input schema for get_summary tool
type GetSummaryRequest struct {
	SessionID string `json:"session_id"`
}

// SpeechScriptRequest defines the input schema for speech_script tool
type SpeechScriptRequest struct {
	SessionID string `json:"session_id"`

	// Accent is one of us, com.ng, co.in, com.au, co.uk (default us)
	Accent string `json:"accent,omitempty"`
}

// SpeechScriptResponse defines the output schema for speech_script tool
type SpeechScriptResponse struct {
	Status string         `json:"status"`
	Script *speech.Script `json:"script,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ExportSummaryPDFRequest defines the input schema for export_summary_pdf tool
type ExportSummaryPDFRequest struct {
	SessionID string `json:"session_id"`
}

// ExportSummaryPDFResponse defines the output schema for export_summary_pdf tool
type ExportSummaryPDFResponse struct {
	Status    string `json:"status"`
	FileName  string `json:"file_name,omitempty"`
	PDFBase64 string `json:"pdf_base64,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthReportRequest defines the input schema for health_report tool
type HealthReportRequest struct{}

// HealthReportResponse defines the output schema for health_report tool
type HealthReportResponse struct {
	Status string                `json:"status"`
	Health *service.HealthReport `json:"health,omitempty"`
	Error  string                `json:"error,omitempty"`
}
