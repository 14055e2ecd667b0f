// Package vector provides sentence embedding clients, vector math and the
// centroid ranker used to select a document's main points.
package vector

import "context"

const (
	// DefaultEmbeddingDimensions matches bge-small-en-v1.5.
	DefaultEmbeddingDimensions = 384
)

// Embedder turns sentences into embedding vectors.
type Embedder interface {
	// Embed returns one vector per input, in input order, from a single
	// batched call.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Initialize sets up the embedder with any required configuration.
	Initialize() error
}
