package extract

import (
	"errors"
	"fmt"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/textnorm"
)

// DefaultMinWords is the shortest document worth summarizing.
const DefaultMinWords = 400

// ErrTooShort is the cause of the InputError returned by Gate.Check.
var ErrTooShort = errors.New("writing too short")

// Gate rejects documents below a minimum word count before the pipeline runs.
type Gate struct {
	MinWords int
}

// Check returns an InputError carrying word_count and min_words when text
// has fewer than MinWords whitespace-separated words.
func (g Gate) Check(text string) error {
	minWords := g.MinWords
	if minWords <= 0 {
		minWords = DefaultMinWords
	}

	count := textnorm.CountWords(text)
	if count < minWords {
		return errortypes.InputError(fmt.Errorf("%w: %d/%d words", ErrTooShort, count, minWords), "document too short").
			WithField("word_count", count).
			WithField("min_words", minWords)
	}
	return nil
}
