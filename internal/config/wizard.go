package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to policyrag! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	corpusPrompt := promptui.Prompt{
		Label:   "Corpus directory (policy documents)",
		Default: cfg.CorpusDir,
	}
	corpusDir, err := corpusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus dir: %w", err)
	}
	cfg.CorpusDir = corpusDir

	indexPrompt := promptui.Prompt{
		Label:   "Index directory (persisted vector index)",
		Default: cfg.IndexDir,
	}
	indexDir, err := indexPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("index dir: %w", err)
	}
	cfg.IndexDir = indexDir

	embedPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: cfg.EmbeddingModel,
	}
	embeddingModel, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}
	cfg.EmbeddingModel = embeddingModel

	modelPrompt := promptui.Prompt{
		Label:   "Completion model (OpenRouter identifier)",
		Default: "mistralai/mistral-7b-instruct",
	}
	completionModel, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("completion model: %w", err)
	}
	cfg.CompletionModel = completionModel

	topKPrompt := promptui.Prompt{
		Label:   "Chunks retrieved per question (top-k)",
		Default: strconv.Itoa(cfg.TopK),
		Validate: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 1 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top-k: %w", err)
	}
	cfg.TopK, _ = strconv.Atoi(strings.TrimSpace(topKStr))

	historyPrompt := promptui.Prompt{
		Label:   "Question log database path (blank to disable)",
		Default: "",
	}
	historyDB, err := historyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("history db: %w", err)
	}
	cfg.HistoryDB = historyDB

	for _, envVar := range []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY"} {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running policyrag ask.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
