// Package extract turns user input (a web page, a PDF or pasted text)
// into the raw document text fed to the pipeline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Theomnitron/SummaRead/internal/errortypes"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultFetchTimeout bounds a page download.
	DefaultFetchTimeout = 10 * time.Second
	// MaxPageBytes caps how much of a page body is read. The rest is dropped.
	MaxPageBytes = 5 << 20

	strippedElements = "script, style, nav, footer, iframe, noscript"
	contentElements  = "p, h1, h2, h3, h4, h5, h6, article"
)

// ErrNoMainContent is returned for pages without readable text.
var ErrNoMainContent = errors.New("no main content found (the page may require JavaScript rendering)")

// URLExtractor downloads a web page and keeps its readable text.
type URLExtractor struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewURLExtractor creates an extractor whose downloads are bounded by timeout.
func NewURLExtractor(timeout time.Duration, logger *slog.Logger) *URLExtractor {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &URLExtractor{
		client:   &http.Client{Timeout: timeout},
		maxBytes: MaxPageBytes,
		logger:   logger,
	}
}

// NormalizeURL prefixes https:// when raw has no scheme and rejects
// anything that is not an http(s) URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errortypes.InputError(errors.New("url is empty"), "invalid url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errortypes.InputError(err, "invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errortypes.InputError(fmt.Errorf("unsupported scheme %q", u.Scheme), "invalid url")
	}
	if u.Host == "" {
		return "", errortypes.InputError(errors.New("url has no host"), "invalid url")
	}
	return u.String(), nil
}

// Extract fetches rawURL and returns the text of its paragraphs, headings
// and articles separated by blank lines.
func (e *URLExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errortypes.InputError(err, "invalid url")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", errortypes.RemoteCallError(err, "failed to fetch url").WithField("url", target)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			e.logger.ErrorContext(ctx, "Failed to close response body", "error", err, "url", target)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errortypes.RemoteCallError(fmt.Errorf("unexpected status: %d", resp.StatusCode), "failed to fetch url").
			WithField("url", target)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", errortypes.RemoteCallError(err, "failed to parse page").WithField("url", target)
	}

	text := pageText(doc)
	if text == "" {
		return "", errortypes.InputError(ErrNoMainContent, "nothing to summarize").WithField("url", target)
	}
	e.logger.Debug("Extracted page text", "url", target, "chars", len(text))
	return text, nil
}

// pageText joins the text of content elements. Elements nested in another
// content element are covered by their ancestor and skipped.
func pageText(doc *goquery.Document) string {
	doc.Find(strippedElements).Remove()

	var blocks []string
	doc.Find(contentElements).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(contentElements).Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			blocks = append(blocks, t)
		}
	})
	return strings.Join(blocks, "\n\n")
}
