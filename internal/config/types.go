package config

// Config is the top-level policyrag configuration, corresponding to policyrag.yml.
type Config struct {
	CorpusDir string   `yaml:"corpus_dir" koanf:"corpus_dir"`
	IndexDir  string   `yaml:"index_dir" koanf:"index_dir"`
	Include   []string `yaml:"include" koanf:"include"`
	Exclude   []string `yaml:"exclude" koanf:"exclude"`

	EmbeddingModel   string `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL string `yaml:"embedding_base_url" koanf:"embedding_base_url"`
	EmbeddingAPIKey  string `yaml:"embedding_api_key" koanf:"embedding_api_key"`

	CompletionModel   string `yaml:"completion_model" koanf:"completion_model"`
	CompletionBaseURL string `yaml:"completion_base_url" koanf:"completion_base_url"`
	CompletionAPIKey  string `yaml:"completion_api_key" koanf:"completion_api_key"`

	ChunkSize    int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK         int     `yaml:"top_k" koanf:"top_k"`
	Temperature  float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens    int     `yaml:"max_tokens" koanf:"max_tokens"`

	// HistoryDB is the path to the SQLite question log. Empty disables logging.
	HistoryDB string `yaml:"history_db" koanf:"history_db"`
}
