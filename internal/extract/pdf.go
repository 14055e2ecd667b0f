package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ErrNoPDFText is returned for PDFs without extractable text, such as scans.
var ErrNoPDFText = errors.New("failed to extract any text from the PDF")

var (
	licenseOnce sync.Once
	licenseErr  error
)

// SetLicense installs the unipdf metered key once per process. An empty
// key is ignored.
func SetLicense(key string) error {
	if key == "" {
		return nil
	}
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	return licenseErr
}

// PDFExtractor reads the text layer of searchable PDFs.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// ExtractBytes is Extract over an in-memory file.
func (e *PDFExtractor) ExtractBytes(data []byte) (string, error) {
	return e.Extract(bytes.NewReader(data))
}

// Extract returns the text of every page, pages separated by blank lines.
func (e *PDFExtractor) Extract(r io.ReadSeeker) (string, error) {
	pdfReader, err := model.NewPdfReader(r)
	if err != nil {
		return "", errortypes.InputError(err, "error reading PDF")
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", errortypes.InputError(err, "error reading PDF")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", errortypes.InputError(fmt.Errorf("page %d: %w", i, err), "error reading PDF")
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", errortypes.InputError(fmt.Errorf("page %d: %w", i, err), "error reading PDF")
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", errortypes.InputError(fmt.Errorf("page %d: %w", i, err), "error reading PDF")
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errortypes.InputError(ErrNoPDFText, "nothing to summarize")
	}
	e.logger.Debug("Extracted PDF text", "pages", numPages, "chars", len(out))
	return out, nil
}
