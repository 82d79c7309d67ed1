package config

// DefaultIncludes are the corpus file patterns recognized by default.
var DefaultIncludes = []string{
	"**/*.pdf",
	"**/*.md",
	"**/*.txt",
}

// DefaultConfig returns a Config with sensible defaults. The completion
// model and API keys have no defaults and must come from the config file
// or environment.
func DefaultConfig() *Config {
	return &Config{
		CorpusDir:         "data/policies",
		IndexDir:          "data/index",
		Include:           DefaultIncludes,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingBaseURL:  "https://api.openai.com/v1",
		CompletionBaseURL: "https://openrouter.ai/api/v1",
		ChunkSize:         800,
		ChunkOverlap:      100,
		TopK:              8,
		Temperature:       0.3,
		MaxTokens:         1024,
	}
}
