// Package speech prepares a summary for text-to-speech playback.
package speech

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
)

// Language is the only language summaries are voiced in.
const Language = "en"

// DefaultAccent is used when the caller does not pick one.
const DefaultAccent = "us"

// ErrUnknownAccent is the cause of the InputError returned for an accent
// outside the table.
var ErrUnknownAccent = errors.New("unknown accent")

// Accent is a regional voice served from a TTS host domain.
type Accent struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var accents = []Accent{
	{Code: "us", Label: "English (United States)"},
	{Code: "com.ng", Label: "English (Nigeria)"},
	{Code: "co.in", Label: "English (India)"},
	{Code: "com.au", Label: "English (Australia)"},
	{Code: "co.uk", Label: "English (United Kingdom)"},
}

// Accents lists the supported accents in display order.
func Accents() []Accent {
	out := make([]Accent, len(accents))
	copy(out, accents)
	return out
}

// LookupAccent resolves an accent code. An empty code selects DefaultAccent.
func LookupAccent(code string) (Accent, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		code = DefaultAccent
	}
	for _, a := range accents {
		if a.Code == code {
			return a, nil
		}
	}
	return Accent{}, errortypes.InputError(fmt.Errorf("%w: %q", ErrUnknownAccent, code), "unsupported accent").
		WithField("accent", code)
}

// Script is the text handed to a TTS engine with its voice settings.
type Script struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Accent   Accent `json:"accent"`
}

// Text lays a result out for reading aloud: heading, body, then the two
// outline lists each behind a spoken lead-in.
func Text(r *pipeline.SummaryResult) string {
	if r == nil {
		return ""
	}
	blocks := []string{
		r.Heading,
		r.BodySummary,
		"Main points include: " + strings.Join(r.Outline.MainPoints, "\n"),
		"Key discoveries include: " + strings.Join(r.Outline.KeyDiscoveries, "\n"),
	}
	return strings.Join(blocks, "\n\n")
}

// Build returns the speech script for r in the requested accent.
func Build(r *pipeline.SummaryResult, accent string) (*Script, error) {
	if r == nil {
		return nil, errortypes.InputError(errors.New("no summary"), "nothing to read")
	}
	a, err := LookupAccent(accent)
	if err != nil {
		return nil, err
	}
	return &Script{Text: Text(r), Language: Language, Accent: a}, nil
}
