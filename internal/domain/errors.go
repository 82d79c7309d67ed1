package domain

import "errors"

// Sentinel errors shared across the pipeline. Callers match them with
// errors.Is; packages wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrCorpusNotFound indicates the corpus directory does not exist.
	ErrCorpusNotFound = errors.New("corpus directory not found")

	// ErrEmptyCorpus indicates there were no documents or chunks to index.
	ErrEmptyCorpus = errors.New("corpus contains no indexable content")

	// ErrIndexCorrupt indicates a persisted index is unreadable or its
	// embedding dimension does not match the configured embedder.
	ErrIndexCorrupt = errors.New("persisted index is corrupt")

	// ErrInvalidArgument indicates a caller-supplied value is out of range,
	// such as k < 1 or an empty query.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCompletion indicates the completion provider call failed.
	ErrCompletion = errors.New("completion request failed")
)
