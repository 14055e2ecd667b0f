// Package generator holds the single-prompt generators of the summary:
// the topic heading and the key discoveries.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
)

const (
	headingPrompt    = "In 2 - 10 word, what is the main topic of the following write up:"
	headingMaxTokens = 20
	temperature      = 0.7

	// FailureHeading replaces the heading when generation fails.
	FailureHeading = "Failed to generate heading."
)

var headingStop = []string{"\n", ".", "!", "?"}

// headingTrim is stripped from both ends of a generated heading.
const headingTrim = ".,!?;:\"' "

// ErrEmptyHeading is returned when nothing is left after trimming.
var ErrEmptyHeading = errors.New("heading is empty")

// HeadlineGenerator asks an instruction model for a short topic heading.
type HeadlineGenerator struct {
	chat   providers.Completer
	logger *slog.Logger
}

// NewHeadlineGenerator creates a generator over chat.
func NewHeadlineGenerator(chat providers.Completer, logger *slog.Logger) *HeadlineGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeadlineGenerator{chat: chat, logger: logger}
}

// Heading returns a 2-10 word topic for text. On failure it returns
// FailureHeading together with the cause.
func (g *HeadlineGenerator) Heading(ctx context.Context, text string) (string, error) {
	content, err := g.chat.Complete(ctx, providers.ChatRequest{
		Prompt:      headingPrompt + " " + text,
		Temperature: temperature,
		MaxTokens:   headingMaxTokens,
		Stop:        headingStop,
	})
	if err != nil {
		g.logger.Warn("Heading generation failed", "error", err)
		return FailureHeading, err
	}

	heading := strings.Trim(strings.TrimSpace(content), headingTrim)
	if heading == "" {
		return FailureHeading, ErrEmptyHeading
	}
	return heading, nil
}
