// Package chunker splits documents into overlapping fixed-size windows.
//
// Window size and overlap are measured in runes. The original corpus is
// predominantly prose where rune count tracks the embedding model's token
// count closely enough, and runes keep the splitter deterministic without a
// tokenizer dependency.
package chunker

import "policyrag/internal/domain"

const (
	// DefaultWindow is the chunk size in runes.
	DefaultWindow = 800
	// DefaultOverlap is the number of runes shared between adjacent chunks.
	DefaultOverlap = 100
)

// Chunker performs deterministic sliding-window splitting.
type Chunker struct {
	window  int
	overlap int
}

// New creates a Chunker. Out-of-range values fall back to the defaults.
func New(window, overlap int) *Chunker {
	if window < 1 {
		window = DefaultWindow
	}
	if overlap < 0 || overlap >= window {
		overlap = DefaultOverlap
		if overlap >= window {
			overlap = window / 8
		}
	}
	return &Chunker{window: window, overlap: overlap}
}

// Split chunks every document in order. Chunk order follows window order
// within each document, then document order, and Ordinal records the global
// insertion position so retrieval ties break reproducibly.
//
// Invariants: no chunk is empty, no chunk exceeds the window size, and
// concatenating a document's chunks with the leading overlap removed from
// every chunk but the first reconstructs the document text exactly.
func (c *Chunker) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for i, text := range c.splitText(doc.Text) {
			chunks = append(chunks, domain.Chunk{
				Text:     text,
				SourceID: doc.SourceID,
				Index:    i,
				Ordinal:  len(chunks),
			})
		}
	}
	return chunks
}

// splitText applies the sliding window to a single text. Empty texts yield
// no chunks; the final window may be shorter than the window size.
func (c *Chunker) splitText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.window - c.overlap
	var out []string
	for start := 0; ; start += step {
		end := start + c.window
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
