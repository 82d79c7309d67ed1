package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed policy documents",
	Long: `Retrieves the most relevant policy passages for the question and asks
the completion model to answer using only those passages. Builds the
index first if none exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := createPipelineFromConfig(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := p.Answer(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if verbose {
		fmt.Printf("\n(answered in %s)\n", answer.Latency.Round(time.Millisecond))
	}
	return nil
}
