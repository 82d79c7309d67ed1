package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 100 {
		t.Errorf("chunking defaults: got %d/%d, want 800/100", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 8 {
		t.Errorf("top_k default: got %d, want 8", cfg.TopK)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("temperature default: got %v, want 0.3", cfg.Temperature)
	}
}

func TestLoad_FileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policyrag.yml")
	yml := "corpus_dir: /srv/policies\ncompletion_model: some/model\ntop_k: 4\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("POLICYRAG_TOP_K", "12")
	t.Setenv("POLICYRAG_COMPLETION_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CorpusDir != "/srv/policies" {
		t.Errorf("corpus_dir: got %q", cfg.CorpusDir)
	}
	if cfg.CompletionModel != "some/model" {
		t.Errorf("completion_model: got %q", cfg.CompletionModel)
	}
	if cfg.TopK != 12 {
		t.Errorf("env overlay: top_k got %d, want 12", cfg.TopK)
	}
	if cfg.CompletionAPIKey != "from-env" {
		t.Errorf("env overlay: completion_api_key got %q", cfg.CompletionAPIKey)
	}
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-embed")
	t.Setenv("OPENROUTER_API_KEY", "sk-complete")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingAPIKey != "sk-embed" {
		t.Errorf("embedding_api_key fallback: got %q", cfg.EmbeddingAPIKey)
	}
	if cfg.CompletionAPIKey != "sk-complete" {
		t.Errorf("completion_api_key fallback: got %q", cfg.CompletionAPIKey)
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.EmbeddingAPIKey = "sk-embed"
	cfg.CompletionModel = "some/model"
	cfg.CompletionAPIKey = "sk-complete"
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing corpus_dir", func(c *Config) { c.CorpusDir = "" }},
		{"missing index_dir", func(c *Config) { c.IndexDir = "" }},
		{"missing embedding_model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing embedding_api_key", func(c *Config) { c.EmbeddingAPIKey = "" }},
		{"missing completion_model", func(c *Config) { c.CompletionModel = "" }},
		{"missing completion_api_key", func(c *Config) { c.CompletionAPIKey = "" }},
		{"zero chunk_size", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap >= chunk_size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero top_k", func(c *Config) { c.TopK = 0 }},
		{"temperature out of range", func(c *Config) { c.Temperature = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error does not wrap ErrInvalid: %v", err)
			}
		})
	}
}
