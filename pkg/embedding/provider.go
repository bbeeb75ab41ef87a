package embedding

import "context"

// EmbeddingProvider converts text into fixed-dimension vectors. It is used
// both at index-build time (documents) and at query time.
type EmbeddingProvider interface {
	// Embed converts texts to vectors, preserving input order and length.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery converts a single query string to a vector.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
