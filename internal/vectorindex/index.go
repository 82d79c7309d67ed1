// Package vectorindex persists chunk embeddings in a chromem-go collection
// and answers nearest-neighbor queries over them. An index is built once
// from a full chunk set or loaded from a snapshot, then read-only; there is
// no incremental update path.
package vectorindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"policyrag/internal/domain"
	"policyrag/internal/embeddings"
)

const (
	collectionName = "policies"
	indexFileName  = "index.gob.gz"

	// buildBatchSize is how many chunks are embedded per provider call
	// during a build. It also paces progress reporting.
	buildBatchSize = 100
)

// ProgressFunc is called after each embedded batch during Build.
type ProgressFunc func(done, total int)

// Index is a read-only similarity index over policy chunks.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

// Build embeds all chunks in batches and stores them with their metadata.
// It fails with domain.ErrEmptyCorpus when there is nothing to index.
// onProgress may be nil.
func Build(ctx context.Context, chunks []domain.Chunk, embedder embeddings.Embedder, onProgress ProgressFunc) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	for start := 0; start < len(chunks); start += buildBatchSize {
		end := start + buildBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		docs := make([]chromem.Document, len(batch))
		for i, ch := range batch {
			docs[i] = chromem.Document{
				ID:        fmt.Sprintf("%s:%d", ch.SourceID, ch.Index),
				Content:   ch.Text,
				Embedding: vectors[i],
				Metadata: map[string]string{
					"source":      ch.SourceID,
					"chunk_index": strconv.Itoa(ch.Index),
					"ordinal":     strconv.Itoa(ch.Ordinal),
				},
			}
		}

		// Embeddings are precomputed, so AddDocuments only stores.
		if err := collection.AddDocuments(ctx, docs, 1); err != nil {
			return nil, fmt.Errorf("storing chunks: %w", err)
		}

		if onProgress != nil {
			onProgress(end, len(chunks))
		}
	}

	return &Index{db: db, collection: collection, embedder: embedder}, nil
}

// Save serializes the index into dir: the chromem export plus a manifest
// recording the embedding model and dimension. It writes into a temporary
// sibling directory and swaps it over dir, so a crash never leaves a
// half-written index behind.
func (idx *Index) Save(dir string) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating index parent dir: %w", err)
	}

	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clearing temp dir: %w", err)
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}

	if err := idx.db.ExportToFile(filepath.Join(tmp, indexFileName), true, "", collectionName); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("exporting index: %w", err)
	}

	m := manifest{
		EmbeddingModel: idx.embedder.Name(),
		Dimension:      idx.embedder.Dimensions(),
		Chunks:         idx.collection.Count(),
	}
	if err := m.save(tmp); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing previous index: %w", err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return fmt.Errorf("swapping index into place: %w", err)
	}
	return nil
}

// Exists reports whether dir holds a persisted index snapshot.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, manifestFileName))
	return err == nil
}

// Load restores a persisted index. Unreadable files or an embedding
// dimension that no longer matches the configured embedder fail with
// domain.ErrIndexCorrupt.
func Load(dir string, embedder embeddings.Embedder) (*Index, error) {
	m, err := loadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest: %v", domain.ErrIndexCorrupt, err)
	}
	if m.Dimension != embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index built with %d-dimension embeddings (model %s), embedder %s produces %d",
			domain.ErrIndexCorrupt, m.Dimension, m.EmbeddingModel, embedder.Name(), embedder.Dimensions())
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(filepath.Join(dir, indexFileName), "", collectionName); err != nil {
		return nil, fmt.Errorf("%w: importing %s: %v", domain.ErrIndexCorrupt, indexFileName, err)
	}

	collection := db.GetCollection(collectionName, embeddings.ToChromemFunc(embedder))
	if collection == nil {
		return nil, fmt.Errorf("%w: collection %q missing after import", domain.ErrIndexCorrupt, collectionName)
	}
	if collection.Count() != m.Chunks {
		return nil, fmt.Errorf("%w: manifest declares %d chunks, snapshot holds %d",
			domain.ErrIndexCorrupt, m.Chunks, collection.Count())
	}

	return &Index{db: db, collection: collection, embedder: embedder}, nil
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Query returns up to k nearest chunks by inner-product similarity over
// normalized vectors, descending by score with ties broken by original
// insertion order. chromem is asked for every stored chunk (it brute-forces
// the whole collection either way) so the stable re-sort sees all
// candidates before truncating to k.
func (idx *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.QueryResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidArgument, k)
	}

	total := idx.collection.Count()
	if total == 0 {
		return nil, nil
	}

	raw, err := idx.collection.QueryEmbedding(ctx, vector, total, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]domain.QueryResult, 0, len(raw))
	for _, r := range raw {
		chunkIndex, _ := strconv.Atoi(r.Metadata["chunk_index"])
		ordinal, _ := strconv.Atoi(r.Metadata["ordinal"])
		results = append(results, domain.QueryResult{
			Chunk: domain.Chunk{
				Text:     r.Content,
				SourceID: r.Metadata["source"],
				Index:    chunkIndex,
				Ordinal:  ordinal,
			},
			Similarity: r.Similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}
