package generator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/Theomnitron/SummaRead/internal/textnorm"
)

const keyFactsPromptTemplate = `Read the following text and generate %d interesting or important facts, insights, or discoveries, each between 11 to 15 words long.
Each sentence should:
Clearly state a noteworthy idea, discovery, or surprising point or fact from the text;
Be based on the most interested or meaningful points in the text;
Be simple, clear, and easy to remember;
Use language that remains close to the original, but not copied verbatim;
Do not include any introductory phrases like 'Key discoveries include:' or 'The main findings are:';
Just provide the sentences directly.`

// tokensPerFact sizes the completion budget.
const tokensPerFact = 30

var keyFactsStop = []string{"\n\n", "---", "###", "##", "#"}

// Framing the model is told not to produce.
var introPhrases = []string{"key discoveries include", "the main findings are"}

var listMarker = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+`)

// KeyFactGenerator asks an instruction model for standalone fact sentences.
type KeyFactGenerator struct {
	chat   providers.Completer
	logger *slog.Logger
}

// NewKeyFactGenerator creates a generator over chat.
func NewKeyFactGenerator(chat providers.Completer, logger *slog.Logger) *KeyFactGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyFactGenerator{chat: chat, logger: logger}
}

// KeyFacts returns up to n fact sentences about text. Sentences echoing
// the prompt's lead words or the forbidden framing are dropped. A failed
// call yields an empty list and the cause.
func (g *KeyFactGenerator) KeyFacts(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	instruction := fmt.Sprintf(keyFactsPromptTemplate, n)
	content, err := g.chat.Complete(ctx, providers.ChatRequest{
		Prompt:      instruction + "\n\nText: " + text,
		Temperature: temperature,
		MaxTokens:   n * tokensPerFact,
		Stop:        keyFactsStop,
	})
	if err != nil {
		g.logger.Warn("Key fact generation failed", "error", err)
		return []string{}, err
	}

	prefixes := append([]string{leadWords(instruction)}, introPhrases...)
	facts := make([]string, 0, n)
	for _, s := range textnorm.SplitSentences(listMarker.ReplaceAllString(strings.TrimSpace(content), "")) {
		if echoes(s, prefixes) {
			g.logger.Debug("Dropped echoed sentence", "sentence", s)
			continue
		}
		facts = append(facts, s)
		if len(facts) == n {
			break
		}
	}
	return facts, nil
}

// leadWords is the lower-cased first line of a prompt, up to its first colon.
func leadWords(prompt string) string {
	first, _, _ := strings.Cut(prompt, "\n")
	first, _, _ = strings.Cut(first, ":")
	return strings.ToLower(strings.TrimSpace(first))
}

func echoes(sentence string, prefixes []string) bool {
	lower := strings.ToLower(sentence)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
