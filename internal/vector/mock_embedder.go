package vector

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
)

// MockEmbedder creates deterministic embeddings from an MD5 of the text.
// It backs the offline "mock" embedder provider.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a new MockEmbedder with the specified dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Initialize is a no-op.
func (e *MockEmbedder) Initialize() error {
	return nil
}

// Embed implements Embedder.
func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *MockEmbedder) embedOne(text string) []float32 {
	embedding := make([]float32, e.dimensions)
	hash := md5.Sum([]byte(text))

	for i := range embedding {
		// Four bytes of the hash per dimension, wrapping around.
		var word [4]byte
		for j := range word {
			word[j] = hash[(i*4+j)%len(hash)]
		}
		seed := binary.LittleEndian.Uint32(word[:])
		embedding[i] = float32(seed%1000)/500.0 - 1.0
	}

	normalize(embedding)
	return embedding
}

func normalize(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	magnitude := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= magnitude
	}
}
