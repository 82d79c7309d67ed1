package embeddings

import "context"

// Embedder defines the interface for generating text embeddings.
// Implementations must return L2-normalized vectors so inner product equals
// cosine similarity, and must be safe for concurrent use.
type Embedder interface {
	// Embed generates embeddings for one or more texts. Bulk indexing must
	// go through a single call so implementations can batch requests.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
