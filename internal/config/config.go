package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration errors: missing required settings or
// out-of-range values. Callers match it with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (POLICYRAG_*). API keys left empty fall
// back to the conventional provider environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: POLICYRAG_CORPUS_DIR -> corpus_dir, etc.
	if err := k.Load(env.Provider("POLICYRAG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "POLICYRAG_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.CompletionAPIKey == "" {
		cfg.CompletionAPIKey = os.Getenv("OPENROUTER_API_KEY")
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains everything the pipeline
// needs. It is called once at startup so missing settings fail fast instead
// of deep inside a request.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"corpus_dir", c.CorpusDir},
		{"index_dir", c.IndexDir},
		{"embedding_model", c.EmbeddingModel},
		{"embedding_api_key", c.EmbeddingAPIKey},
		{"completion_model", c.CompletionModel},
		{"completion_base_url", c.CompletionBaseURL},
		{"completion_api_key", c.CompletionAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, r.name)
		}
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalid)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalid)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1", ErrInvalid)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2]", ErrInvalid)
	}

	return nil
}
