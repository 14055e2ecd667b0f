package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Theomnitron/SummaRead/internal/export"
	"github.com/Theomnitron/SummaRead/internal/service"
	"github.com/Theomnitron/SummaRead/internal/sessionstore"
	"github.com/Theomnitron/SummaRead/internal/tools"
	"github.com/gin-gonic/gin"
)

// MaxUploadBytes bounds an uploaded PDF.
const MaxUploadBytes = 32 << 20

// SummarizeRequest is the body of POST /v1/sessions/:session/summaries.
// Exactly one of Text and URL is set.
type SummarizeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Controller handles the HTTP requests of the summary API.
type Controller struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewController creates a controller over svc.
func NewController(svc *service.Service, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{svc: svc, logger: logger}
}

// CreateSession handles POST /v1/sessions.
func (h *Controller) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"session_id": sessionstore.NewSessionID()})
}

// Summarize handles POST /v1/sessions/:session/summaries.
func (h *Controller) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "invalid request body")
		return
	}

	var (
		rec *sessionstore.Record
		err error
	)
	switch {
	case req.Text != "" && req.URL != "":
		badRequest(c, h.logger, errors.New("text and url are mutually exclusive"), "invalid request body")
		return
	case req.URL != "":
		rec, err = h.svc.SummarizeURL(c.Request.Context(), c.Param("session"), req.URL)
	default:
		rec, err = h.svc.SummarizeText(c.Request.Context(), c.Param("session"), req.Text)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools.NewSummaryResponse(rec))
}

// SummarizePDF handles POST /v1/sessions/:session/summaries/pdf.
func (h *Controller) SummarizePDF(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, h.logger, err, "missing file upload")
		return
	}
	if fh.Size > MaxUploadBytes {
		badRequest(c, h.logger, errors.New("file too large"), "invalid upload")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, h.logger, err, "unreadable upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes))
	if err != nil {
		badRequest(c, h.logger, err, "unreadable upload")
		return
	}

	rec, err := h.svc.SummarizePDF(c.Request.Context(), c.Param("session"), data)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools.NewSummaryResponse(rec))
}

// GetSummary handles GET /v1/sessions/:session/summary.
func (h *Controller) GetSummary(c *gin.Context) {
	rec, err := h.svc.Current(c.Request.Context(), c.Param("session"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools.NewSummaryResponse(rec))
}

// Speech handles GET /v1/sessions/:session/speech?accent=.
func (h *Controller) Speech(c *gin.Context) {
	script, err := h.svc.Speech(c.Request.Context(), c.Param("session"), c.Query("accent"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, script)
}

// ExportPDF handles GET /v1/sessions/:session/summary.pdf.
func (h *Controller) ExportPDF(c *gin.Context) {
	data, err := h.svc.ExportPDF(c.Request.Context(), c.Param("session"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Health handles GET /v1/health.
func (h *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Health())
}
