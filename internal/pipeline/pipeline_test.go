package pipeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"policyrag/internal/config"
	"policyrag/internal/db"
	"policyrag/internal/domain"
	"policyrag/internal/history"
	"policyrag/internal/llm"
)

// mockEmbedder returns deterministic embeddings based on text content.
// The call counter is atomic so concurrency tests can read it under -race.
type mockEmbedder struct {
	dims  int
	calls atomic.Int32
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%m.dims] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / norm)
			}
		}
		results[i] = vec
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// mockProvider records the last request and returns a canned answer.
type mockProvider struct {
	lastRequest *llm.CompletionRequest
	response    string
	failNext    bool
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.lastRequest = &req
	if m.failNext {
		m.failNext = false
		return nil, domain.ErrCompletion
	}
	return &llm.CompletionResponse{Content: m.response, Model: req.Model}, nil
}

const acPolicy = `AC 2 Tier cancellation policy.
For AC 2 Tier class tickets cancelled more than 48 hours before
departure, the cancellation charge is Rs 200 or 25 percent of the fare,
whichever is greater. Refund = Ticket Price - Cancellation Charges.`

func testConfig(t *testing.T, policies map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	corpus := filepath.Join(root, "policies")
	if policies != nil {
		if err := os.MkdirAll(corpus, 0o755); err != nil {
			t.Fatal(err)
		}
		for name, text := range policies {
			if err := os.WriteFile(filepath.Join(corpus, name), []byte(text), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.CorpusDir = corpus
	cfg.IndexDir = filepath.Join(root, "index")
	cfg.CompletionModel = "test-model"
	return cfg
}

func TestAnswer_EndToEnd(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	embedder := &mockEmbedder{dims: 32}
	provider := &mockProvider{response: "Refund = Rs 1000 - Rs 250 = Rs 750"}
	p := New(cfg, embedder, provider)

	answer, err := p.Answer(context.Background(),
		"I cancelled my AC 2-tier ticket of Rs 1000 more than 48 hours before departure. What is my refund?")
	if err != nil {
		t.Fatalf("answering: %v", err)
	}
	if answer.Text != provider.response {
		t.Errorf("expected provider response, got %q", answer.Text)
	}
	if answer.Latency <= 0 {
		t.Error("expected positive latency")
	}
	if p.State() != StateReady {
		t.Errorf("expected Ready state, got %v", p.State())
	}

	if provider.lastRequest == nil {
		t.Fatal("provider was never called")
	}
	if provider.lastRequest.Model != "test-model" {
		t.Errorf("expected configured model, got %q", provider.lastRequest.Model)
	}
	content := provider.lastRequest.Messages[0].Content
	if !strings.Contains(content, "AC 2 Tier") {
		t.Error("prompt is missing the retrieved policy text")
	}
	if !strings.Contains(content, "What is my refund?") {
		t.Error("prompt is missing the question")
	}
	if !strings.Contains(content, "Refund = [Ticket Price] - [Cancellation Charges] = [Refund Amount]") {
		t.Error("prompt is missing the refund formula instructions")
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	provider := &mockProvider{response: "unused"}
	p := New(cfg, &mockEmbedder{dims: 32}, provider)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := p.Answer(context.Background(), query)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("query %q: expected ErrInvalidArgument, got %v", query, err)
		}
	}
	if provider.lastRequest != nil {
		t.Error("provider must not be called for blank queries")
	}
}

func TestEnsureReady_MissingCorpus(t *testing.T) {
	cfg := testConfig(t, nil)
	p := New(cfg, &mockEmbedder{dims: 32}, &mockProvider{})

	err := p.EnsureReady(context.Background())
	if !errors.Is(err, domain.ErrCorpusNotFound) {
		t.Fatalf("expected ErrCorpusNotFound, got %v", err)
	}
	if _, statErr := os.Stat(cfg.IndexDir); !os.IsNotExist(statErr) {
		t.Error("a failed build must not leave an index on disk")
	}
	if p.State() != StateFailed {
		t.Errorf("expected Failed state, got %v", p.State())
	}
}

func TestEnsureReady_FailureIsSticky(t *testing.T) {
	cfg := testConfig(t, nil)
	p := New(cfg, &mockEmbedder{dims: 32}, &mockProvider{})

	first := p.EnsureReady(context.Background())
	if first == nil {
		t.Fatal("expected failure for missing corpus")
	}

	// Fixing the corpus does not revive EnsureReady; a rebuild does.
	if err := os.MkdirAll(cfg.CorpusDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.CorpusDir, "p.txt"), []byte(acPolicy), 0o644); err != nil {
		t.Fatal(err)
	}

	second := p.EnsureReady(context.Background())
	if !errors.Is(second, first) && second.Error() != first.Error() {
		t.Errorf("expected the stored error to be replayed, got %v", second)
	}

	if _, err := p.BuildIndex(context.Background()); err != nil {
		t.Fatalf("rebuild after fixing corpus: %v", err)
	}
	if p.State() != StateReady {
		t.Errorf("expected Ready after rebuild, got %v", p.State())
	}
}

func TestEnsureReady_Memoized(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	embedder := &mockEmbedder{dims: 32}
	p := New(cfg, embedder, &mockProvider{response: "ok"})

	if err := p.EnsureReady(context.Background()); err != nil {
		t.Fatalf("first EnsureReady: %v", err)
	}
	buildCalls := embedder.calls.Load()

	if _, err := p.Answer(context.Background(), "what are the charges?"); err != nil {
		t.Fatalf("answering: %v", err)
	}
	// Only the query itself is embedded once the index is ready.
	if got := embedder.calls.Load(); got != buildCalls+1 {
		t.Errorf("expected 1 extra embed call, got %d", got-buildCalls)
	}
}

func TestEnsureReady_SingleFlight(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	embedder := &mockEmbedder{dims: 32}
	p := New(cfg, embedder, &mockProvider{response: "ok"})

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.EnsureReady(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	// The corpus fits in one chunk, so a single build embeds exactly once.
	if got := embedder.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 embed call across concurrent callers, got %d", got)
	}
	if p.State() != StateReady {
		t.Errorf("expected Ready state, got %v", p.State())
	}
}

func TestEnsureReady_LoadsPersistedIndex(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	embedder := &mockEmbedder{dims: 32}

	first := New(cfg, embedder, &mockProvider{})
	if _, err := first.BuildIndex(context.Background()); err != nil {
		t.Fatalf("building: %v", err)
	}

	fresh := &mockEmbedder{dims: 32}
	second := New(cfg, fresh, &mockProvider{response: "ok"})
	if err := second.EnsureReady(context.Background()); err != nil {
		t.Fatalf("loading persisted index: %v", err)
	}
	if got := fresh.calls.Load(); got != 0 {
		t.Errorf("loading a snapshot must not embed anything, got %d calls", got)
	}
	if second.State() != StateReady {
		t.Errorf("expected Ready state, got %v", second.State())
	}
}

func TestAnswer_CompletionFailureLeavesIndexReady(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	provider := &mockProvider{response: "recovered", failNext: true}
	p := New(cfg, &mockEmbedder{dims: 32}, provider)

	_, err := p.Answer(context.Background(), "first try")
	if !errors.Is(err, domain.ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
	if p.State() != StateReady {
		t.Fatalf("a completion failure must not poison the index, state is %v", p.State())
	}

	answer, err := p.Answer(context.Background(), "second try")
	if err != nil {
		t.Fatalf("retry after completion failure: %v", err)
	}
	if answer.Text != "recovered" {
		t.Errorf("expected recovered answer, got %q", answer.Text)
	}
}

func TestBuildIndex_Result(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"a.txt": acPolicy,
		"b.txt": "Tatkal tickets are non-refundable on cancellation.",
	})
	p := New(cfg, &mockEmbedder{dims: 32}, &mockProvider{})

	res, err := p.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("building: %v", err)
	}
	if res.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", res.Documents)
	}
	if res.Chunks < 2 {
		t.Errorf("expected at least 2 chunks, got %d", res.Chunks)
	}
}

func TestAnswer_LogsHistory(t *testing.T) {
	cfg := testConfig(t, map[string]string{"cancellation.txt": acPolicy})
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := history.NewStore(database)

	p := New(cfg, &mockEmbedder{dims: 32}, &mockProvider{response: "Rs 750"}, WithHistory(store))

	if _, err := p.Answer(context.Background(), "refund for Rs 1000 AC 2-tier?"); err != nil {
		t.Fatalf("answering: %v", err)
	}

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Answer != "Rs 750" {
		t.Errorf("expected logged answer, got %q", entries[0].Answer)
	}
	if entries[0].Latency < 0 {
		t.Errorf("expected non-negative latency, got %v", entries[0].Latency)
	}
}
