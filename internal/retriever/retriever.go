// Package retriever wraps the vector index with the top-k retrieval policy.
package retriever

import (
	"context"
	"fmt"

	"policyrag/internal/domain"
	"policyrag/internal/embeddings"
	"policyrag/internal/vectorindex"
)

// DefaultTopK balances context completeness against prompt length and cost.
const DefaultTopK = 8

// Retriever embeds query text and finds the most similar indexed chunks.
type Retriever struct {
	index    *vectorindex.Index
	embedder embeddings.Embedder
	topK     int
}

// New creates a Retriever. topK < 1 falls back to DefaultTopK.
func New(index *vectorindex.Index, embedder embeddings.Embedder, topK int) *Retriever {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &Retriever{index: index, embedder: embedder, topK: topK}
}

// Retrieve embeds the query and returns the top-k chunks by similarity.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.QueryResult, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	return r.index.Query(ctx, vectors[0], r.topK)
}
