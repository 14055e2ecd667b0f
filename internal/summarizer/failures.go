package summarizer

import "errors"

// Failure texts shown in place of a body summary.
const (
	FailureTokenizer = "Error: tokenizer not initialized. Cannot generate body summary."
	FailureRequest   = "Failed to get a summary from the summarization API."
	FailureEmpty     = "Failed to get summary text from the summarization model."
	FailureChunk     = "Failed to get an intermediate summary from the summarization API during chunking."
	FailureNoContent = "No intermediate summaries generated."
	FailureMaxDepth  = "Max recursion depth reached for body summary."
)

// FailureText maps a Summarize error to its display text.
func FailureText(err error) string {
	switch {
	case errors.Is(err, ErrMaxDepth):
		return FailureMaxDepth
	case errors.Is(err, ErrNoContent):
		return FailureNoContent
	case errors.Is(err, ErrChunkFailed):
		return FailureChunk
	case errors.Is(err, ErrEmptySummary):
		return FailureEmpty
	case errors.Is(err, ErrTokenizer):
		return FailureTokenizer
	default:
		return FailureRequest
	}
}

// IsFailureText reports whether s is one of the body failure texts.
func IsFailureText(s string) bool {
	switch s {
	case FailureTokenizer, FailureRequest, FailureEmpty, FailureChunk, FailureNoContent, FailureMaxDepth:
		return true
	}
	return false
}
