// Package export renders a finished summary as a downloadable PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"
)

// FileName is the suggested download name of an exported summary.
const FileName = "SummaRead_Summary.pdf"

const (
	headingSize = 20
	sectionSize = 14
	bodySize    = 12
	bullet      = "•"
)

type fonts struct {
	regular *model.PdfFont
	bold    *model.PdfFont
}

func loadFonts() (*fonts, error) {
	regular, err := model.NewStandard14Font(model.HelveticaName)
	if err != nil {
		return nil, err
	}
	bold, err := model.NewStandard14Font(model.HelveticaBoldName)
	if err != nil {
		return nil, err
	}
	return &fonts{regular: regular, bold: bold}, nil
}

// WritePDF renders r into w: a centered heading, the body summary, then
// the main points and key discoveries as bulleted sections.
func WritePDF(w io.Writer, r *pipeline.SummaryResult) error {
	if r == nil {
		return errortypes.InputError(errors.New("no summary"), "nothing to export")
	}

	f, err := loadFonts()
	if err != nil {
		return errortypes.InternalError(err, "failed to load PDF fonts")
	}

	c := creator.New()
	c.SetPageMargins(50, 50, 50, 50)
	c.NewPage()

	heading := c.NewParagraph(r.Heading)
	heading.SetFont(f.bold)
	heading.SetFontSize(headingSize)
	heading.SetTextAlignment(creator.TextAlignmentCenter)
	heading.SetMargins(0, 0, 0, 20)

	body := c.NewParagraph(r.BodySummary)
	body.SetFont(f.regular)
	body.SetFontSize(bodySize)
	body.SetLineHeight(1.3)
	body.SetMargins(0, 0, 0, 15)

	blocks := []creator.Drawable{heading, body}
	blocks = append(blocks, section(c, f, "Important Points:", r.Outline.MainPoints)...)
	blocks = append(blocks, section(c, f, "Key Discoveries:", r.Outline.KeyDiscoveries)...)

	for _, b := range blocks {
		if err := c.Draw(b); err != nil {
			return errortypes.InternalError(err, "failed to render PDF")
		}
	}

	if err := c.Write(w); err != nil {
		return errortypes.InternalError(err, "failed to write PDF")
	}
	return nil
}

// PDF is WritePDF into a byte slice.
func PDF(r *pipeline.SummaryResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(c *creator.Creator, f *fonts, title string, items []string) []creator.Drawable {
	head := c.NewParagraph(title)
	head.SetFont(f.bold)
	head.SetFontSize(sectionSize)
	head.SetMargins(0, 0, 5, 5)

	out := []creator.Drawable{head}
	for _, item := range items {
		p := c.NewParagraph(fmt.Sprintf("%s  %s", bullet, item))
		p.SetFont(f.regular)
		p.SetFontSize(bodySize)
		p.SetMargins(10, 0, 0, 4)
		out = append(out, p)
	}
	return out
}
