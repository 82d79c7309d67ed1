package cmd

import (
	"fmt"

	"policyrag/internal/config"
	"policyrag/internal/db"
	"policyrag/internal/embeddings"
	"policyrag/internal/history"
	"policyrag/internal/llm"
	"policyrag/internal/pipeline"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `policyrag init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	if cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("embedding API key is not set (set embedding_api_key or the OPENAI_API_KEY environment variable)")
	}
	return embeddings.NewOpenAIEmbedder(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel, 0), nil
}

func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	if cfg.CompletionAPIKey == "" {
		return nil, fmt.Errorf("completion API key is not set (set completion_api_key or the OPENROUTER_API_KEY environment variable)")
	}
	return llm.NewOpenAIProvider(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel), nil
}

// createPipelineFromConfig assembles the full pipeline. The returned
// cleanup closes the history database and may be called on a nil-history
// pipeline too.
func createPipelineFromConfig(cfg *config.Config, opts ...pipeline.Option) (*pipeline.Pipeline, func(), error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if cfg.HistoryDB != "" {
		database, err := db.Open(cfg.HistoryDB)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history database: %w", err)
		}
		cleanup = func() { database.Close() }
		opts = append(opts, pipeline.WithHistory(history.NewStore(database)))
	}

	return pipeline.New(cfg, embedder, provider, opts...), cleanup, nil
}
