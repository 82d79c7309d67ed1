// Package pipeline wires extraction, chunking, embedding, indexing,
// retrieval, and completion into a single question-answering flow.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"policyrag/internal/chunker"
	"policyrag/internal/config"
	"policyrag/internal/domain"
	"policyrag/internal/embeddings"
	"policyrag/internal/extractor"
	"policyrag/internal/history"
	"policyrag/internal/llm"
	"policyrag/internal/prompt"
	"policyrag/internal/retriever"
	"policyrag/internal/vectorindex"
)

// State tracks where the pipeline is in its index lifecycle.
type State int

const (
	StateNotLoaded State = iota
	StateLoading
	StateBuilding
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not-loaded"
	case StateLoading:
		return "loading"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BuildResult summarizes an index build.
type BuildResult struct {
	Documents       int
	Chunks          int
	SkippedElements int
	Duration        time.Duration
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithHistory attaches a question log. Logging failures are reported
// but never fail an answer.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// WithProgress attaches a build progress callback.
func WithProgress(fn vectorindex.ProgressFunc) Option {
	return func(p *Pipeline) { p.onProgress = fn }
}

// Pipeline owns the index lifecycle and answers questions against it.
// All methods are safe for concurrent use; index preparation is
// serialized so concurrent callers share one build.
type Pipeline struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	provider llm.Provider

	history    *history.Store
	onProgress vectorindex.ProgressFunc

	mu        chan struct{} // capacity-1 semaphore guarding the fields below
	state     State
	stateErr  error
	index     *vectorindex.Index
	retriever *retriever.Retriever
}

// New creates a Pipeline. The index is not touched until EnsureReady,
// BuildIndex, or Answer is called.
func New(cfg *config.Config, embedder embeddings.Embedder, provider llm.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		provider: provider,
		mu:       make(chan struct{}, 1),
		state:    StateNotLoaded,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) lock(ctx context.Context) error {
	select {
	case p.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) unlock() { <-p.mu }

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu <- struct{}{}
	defer p.unlock()
	return p.state
}

// EnsureReady makes the index usable: it loads a persisted snapshot if
// one exists, otherwise builds one from the corpus and persists it. The
// result is memoized; once the pipeline is Ready this returns nil
// immediately, and once it is Failed it replays the stored error without
// touching the corpus again.
func (p *Pipeline) EnsureReady(ctx context.Context) error {
	if err := p.lock(ctx); err != nil {
		return err
	}
	defer p.unlock()
	return p.ensureReadyLocked(ctx)
}

func (p *Pipeline) ensureReadyLocked(ctx context.Context) error {
	switch p.state {
	case StateReady:
		return nil
	case StateFailed:
		return p.stateErr
	}

	if vectorindex.Exists(p.cfg.IndexDir) {
		p.state = StateLoading
		idx, err := vectorindex.Load(p.cfg.IndexDir, p.embedder)
		if err != nil {
			p.fail(err)
			return err
		}
		p.ready(idx)
		return nil
	}

	_, err := p.buildLocked(ctx)
	return err
}

// BuildIndex builds the index from the corpus and persists it,
// replacing any existing snapshot. Unlike EnsureReady it always
// rebuilds, so it also clears a previous Failed state when the corpus
// has been fixed.
func (p *Pipeline) BuildIndex(ctx context.Context) (*BuildResult, error) {
	if err := p.lock(ctx); err != nil {
		return nil, err
	}
	defer p.unlock()
	return p.buildLocked(ctx)
}

func (p *Pipeline) buildLocked(ctx context.Context) (*BuildResult, error) {
	p.state = StateBuilding
	start := time.Now()

	ext := extractor.New(p.cfg.Include, p.cfg.Exclude)
	docs, stats, err := ext.Extract(p.cfg.CorpusDir)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	chunks := chunker.New(p.cfg.ChunkSize, p.cfg.ChunkOverlap).Split(docs)
	if len(chunks) == 0 {
		err := fmt.Errorf("%w: %s yielded no text", domain.ErrEmptyCorpus, p.cfg.CorpusDir)
		p.fail(err)
		return nil, err
	}

	idx, err := vectorindex.Build(ctx, chunks, p.embedder, p.onProgress)
	if err != nil {
		p.fail(err)
		return nil, err
	}
	if err := idx.Save(p.cfg.IndexDir); err != nil {
		p.fail(err)
		return nil, err
	}

	p.ready(idx)
	return &BuildResult{
		Documents:       len(docs),
		Chunks:          len(chunks),
		SkippedElements: stats.SkippedElements,
		Duration:        time.Since(start),
	}, nil
}

func (p *Pipeline) ready(idx *vectorindex.Index) {
	p.state = StateReady
	p.stateErr = nil
	p.index = idx
	p.retriever = retriever.New(idx, p.embedder, p.cfg.TopK)
}

func (p *Pipeline) fail(err error) {
	p.state = StateFailed
	p.stateErr = err
	p.index = nil
	p.retriever = nil
}

// Answer retrieves context for the query, composes the prompt, and asks
// the completion provider. A blank query fails with
// domain.ErrInvalidArgument before any embedding or completion call. A
// completion failure is returned to the caller but leaves the index
// Ready, so the next question retries against the same index.
func (p *Pipeline) Answer(ctx context.Context, query string) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}

	if err := p.lock(ctx); err != nil {
		return nil, err
	}
	if err := p.ensureReadyLocked(ctx); err != nil {
		p.unlock()
		return nil, err
	}
	rtr := p.retriever
	p.unlock()

	start := time.Now()

	results, err := rtr.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model: p.cfg.CompletionModel,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt.Compose(query, results)},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: &p.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Text:    resp.Content,
		Latency: time.Since(start),
	}

	if p.history != nil {
		logErr := p.history.Log(ctx, history.Entry{
			Question: query,
			Answer:   answer.Text,
			Latency:  answer.Latency,
		})
		if logErr != nil {
			log.Printf("warning: failed to log question: %v", logErr)
		}
	}

	return answer, nil
}
