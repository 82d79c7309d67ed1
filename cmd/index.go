package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"policyrag/internal/pipeline"
	"policyrag/internal/progress"
	"policyrag/internal/vectorindex"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the policy corpus",
	Long: `Extracts text from every document in the corpus directory, splits it
into overlapping chunks, embeds them, and persists the resulting vector
index. An existing index is kept unless --force is given.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("force", false, "rebuild even if an index already exists")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if vectorindex.Exists(cfg.IndexDir) && !force {
		fmt.Printf("Index already exists at %s. Use --force to rebuild.\n", cfg.IndexDir)
		return nil
	}

	reporter := progress.NewReporter()
	p, cleanup, err := createPipelineFromConfig(cfg, pipeline.WithProgress(reporter.Update))
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := p.BuildIndex(ctx)
	if err != nil {
		return err
	}
	reporter.Finish()

	fmt.Printf("Indexed %d documents (%d chunks) in %s\n", res.Documents, res.Chunks, res.Duration.Round(10*time.Millisecond))
	if res.SkippedElements > 0 && verbose {
		fmt.Printf("Skipped %d elements with no extractable text\n", res.SkippedElements)
	}
	return nil
}
