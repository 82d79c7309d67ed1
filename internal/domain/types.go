package domain

import "time"

// Document is the normalized text of a single corpus file.
type Document struct {
	Text     string
	SourceID string // originating filename
}

// Chunk is a bounded slice of a document's text, the unit of embedding
// and retrieval.
type Chunk struct {
	Text     string
	SourceID string
	Index    int // position within the source document
	Ordinal  int // global insertion position across the whole corpus
}

// QueryResult pairs a chunk with its similarity score.
type QueryResult struct {
	Chunk      Chunk
	Similarity float32
}

// Answer is the result of a single question through the pipeline.
type Answer struct {
	Text    string
	Latency time.Duration
}
