// Package textnorm cleans raw extracted document text and splits it into
// sentences for the summarization pipeline.
package textnorm

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// ParagraphBreak separates paragraphs in cleaned text.
const ParagraphBreak = "\n\n"

// maxPasses bounds the fixpoint loop in Clean.
const maxPasses = 8

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)

	// Lines that carry nothing but a page marker.
	pageLine = regexp.MustCompile(`(?i)^\s*(?:page\s+\d+(?:\s+of\s+\d+)?|-?\s*\d+\s*-?)\s*$`)

	// Inline boilerplate, applied in order.
	boilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`),
		regexp.MustCompile(`(?i)\b\d+\s+of\s+\d+\b`),
		regexp.MustCompile(`(?:^|\s)-\s*\d+\s*-(?:\s|$)`),
		xurls.Strict(),
		regexp.MustCompile(`(?i)\bwww\.\S+`),
		regexp.MustCompile(`\S+@\S+`),
		regexp.MustCompile(`(?i)(?:©\s*\d{4}|\bcopyright\b\s*©?)[^.!?]*[.!?]?`),
	}

	// Everything outside word characters, whitespace and citation punctuation.
	disallowed = regexp.MustCompile("[^\\p{L}\\p{N}_\\s.,;:?!\\-'()\"`]")

	sentenceEnd = regexp.MustCompile(`[.!?]\s+`)
)

// Clean normalizes raw text and returns it with its sentences. Empty or
// whitespace-only input yields ("", nil). Paragraph breaks from the raw
// text survive as ParagraphBreak markers. Clean is idempotent.
func Clean(raw string) (string, []string) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	cleaned := cleanPass(raw)
	for i := 0; i < maxPasses; i++ {
		next := cleanPass(cleaned)
		if next == cleaned {
			break
		}
		cleaned = next
	}

	if cleaned == "" {
		return "", nil
	}
	return cleaned, SplitSentences(cleaned)
}

func cleanPass(text string) string {
	paragraphs := paragraphSplit.Split(text, -1)
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if c := cleanParagraph(p); c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, ParagraphBreak)
}

func cleanParagraph(p string) string {
	lines := strings.Split(p, "\n")
	body := lines[:0]
	for _, line := range lines {
		if pageLine.MatchString(line) {
			continue
		}
		body = append(body, line)
	}

	s := collapse(strings.Join(body, " "))
	for _, re := range boilerplate {
		s = re.ReplaceAllString(s, " ")
	}
	s = disallowed.ReplaceAllString(s, "")
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// SplitSentences cuts text after '.', '!' or '?' when followed by
// whitespace. Fragments are trimmed, internal whitespace collapsed, empty
// fragments dropped, and document order kept.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentences = appendSentence(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return appendSentence(sentences, text[start:])
}

func appendSentence(out []string, fragment string) []string {
	if s := collapse(fragment); s != "" {
		out = append(out, s)
	}
	return out
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
