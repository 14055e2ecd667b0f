package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
)

// Ranking failures. Both surface as errortypes.ErrorTypeRanking.
var (
	ErrNoSentences     = errors.New("no sentences to rank")
	ErrEmbeddingFailed = errors.New("failed to get embeddings")
)

// Ranker selects the sentences closest to the document centroid.
type Ranker struct {
	embedder Embedder
	logger   *slog.Logger
}

// NewRanker creates a ranker over embedder.
func NewRanker(embedder Embedder, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{embedder: embedder, logger: logger}
}

// ScoredSentence pairs a sentence with its similarity to the centroid.
type ScoredSentence struct {
	Index int
	Text  string
	Score float64
}

// Score embeds sentences in one batch and returns them ordered by
// similarity to the centroid, highest first. Equal scores keep document
// order.
func (r *Ranker) Score(ctx context.Context, sentences []string) ([]ScoredSentence, error) {
	if len(sentences) == 0 {
		return nil, errortypes.RankingError(ErrNoSentences, "cannot rank main points")
	}

	vectors, err := r.embedder.Embed(ctx, sentences)
	if err != nil {
		return nil, errortypes.RankingError(fmt.Errorf("%w: %w", ErrEmbeddingFailed, err), "cannot rank main points")
	}
	if len(vectors) != len(sentences) {
		err := fmt.Errorf("%w: got %d vectors for %d sentences", ErrEmbeddingFailed, len(vectors), len(sentences))
		return nil, errortypes.RankingError(err, "cannot rank main points")
	}

	centroid, err := Centroid(vectors)
	if err != nil {
		return nil, errortypes.RankingError(fmt.Errorf("%w: %w", ErrEmbeddingFailed, err), "cannot rank main points")
	}

	scored := make([]ScoredSentence, len(sentences))
	for i, s := range sentences {
		scored[i] = ScoredSentence{Index: i, Text: s, Score: CosineSimilarity(vectors[i], centroid)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// RankMainPoints returns the k most central sentences in score order. k is
// clamped to the number of sentences.
func (r *Ranker) RankMainPoints(ctx context.Context, sentences []string, k int) ([]string, error) {
	scored, err := r.Score(ctx, sentences)
	if err != nil {
		return nil, err
	}

	if k > len(scored) {
		k = len(scored)
	}
	if k < 0 {
		k = 0
	}

	out := make([]string, k)
	for i := range out {
		out[i] = scored[i].Text
	}
	r.logger.Debug("Ranked main points", "sentences", len(sentences), "selected", k)
	return out, nil
}
