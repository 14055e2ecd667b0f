// Package tokenizer counts and slices model tokens for the body
// summarizer's context budget.
package tokenizer

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	sugartok "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokens is the encoding of one text. It holds everything needed to
// render a token range back to text.
type Tokens interface {
	// Len is the number of tokens.
	Len() int

	// Text renders tokens [start, end) back to text.
	Text(start, end int) string
}

// Tokenizer encodes text for the model's context budget.
type Tokenizer interface {
	// Encode returns the tokens of text without special tokens.
	Encode(text string) (Tokens, error)
}

// Pretrained wraps a HuggingFace tokenizer.json loaded on first use.
// Loading happens once per handle and is safe for concurrent callers.
type Pretrained struct {
	path   string
	logger *slog.Logger

	once sync.Once
	tok  *sugartok.Tokenizer
	err  error
}

// NewPretrained creates a lazily loaded tokenizer for the file at path.
func NewPretrained(path string, logger *slog.Logger) *Pretrained {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pretrained{path: path, logger: logger}
}

func (p *Pretrained) load() (*sugartok.Tokenizer, error) {
	p.once.Do(func() {
		p.logger.Info("Loading tokenizer", "path", p.path)
		p.tok, p.err = pretrained.FromFile(p.path)
		if p.err != nil {
			p.err = fmt.Errorf("failed to load tokenizer %s: %w", p.path, p.err)
		}
	})
	return p.tok, p.err
}

// Encode implements Tokenizer.
func (p *Pretrained) Encode(text string) (Tokens, error) {
	tok, err := p.load()
	if err != nil {
		return nil, err
	}
	enc, err := tok.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}
	return idTokens{tok: tok, ids: enc.GetIds()}, nil
}

type idTokens struct {
	tok *sugartok.Tokenizer
	ids []int
}

func (t idTokens) Len() int { return len(t.ids) }

func (t idTokens) Text(start, end int) string {
	return t.tok.Decode(t.ids[start:end], true)
}

// DefaultTokensPerWord estimates BART BPE tokens per English word.
const DefaultTokensPerWord = 1.3

// Whitespace estimates model tokens from whitespace-separated words when
// no tokenizer.json is configured. It is stateless and safe for
// concurrent use.
type Whitespace struct {
	// TokensPerWord scales the word count. Values below 1 are treated as 1.
	TokensPerWord float64
}

// NewWhitespace creates an estimator using DefaultTokensPerWord.
func NewWhitespace() *Whitespace {
	return &Whitespace{TokensPerWord: DefaultTokensPerWord}
}

// Encode implements Tokenizer.
func (w *Whitespace) Encode(text string) (Tokens, error) {
	return wordTokens{words: strings.Fields(text), ratio: max(w.TokensPerWord, 1)}, nil
}

// wordTokens maps token positions onto words: token t belongs to word
// floor(t/ratio).
type wordTokens struct {
	words []string
	ratio float64
}

func (t wordTokens) Len() int {
	return int(math.Ceil(float64(len(t.words)) * t.ratio))
}

func (t wordTokens) Text(start, end int) string {
	from := min(int(float64(start)/t.ratio), len(t.words))
	to := len(t.words)
	if end < t.Len() {
		to = min(int(math.Ceil(float64(end)/t.ratio)), len(t.words))
	}
	return strings.Join(t.words[from:to], " ")
}

// New returns a pretrained tokenizer when path is set and the whitespace
// estimator otherwise.
func New(path string, logger *slog.Logger) Tokenizer {
	if strings.TrimSpace(path) == "" {
		return NewWhitespace()
	}
	return NewPretrained(path, logger)
}
