package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"policyrag/internal/db"
	"policyrag/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		fmt.Println("History logging is disabled (history_db is empty).")
		return nil
	}

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer database.Close()

	entries, err := history.NewStore(database).Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No questions answered yet.")
		return nil
	}

	for i, e := range entries {
		fmt.Printf("%d. [%s] %s\n", i+1, e.CreatedAt.Format("2006-01-02 15:04"), e.Question)
		fmt.Printf("   %s\n", firstLine(e.Answer))
		fmt.Printf("   answered in %s\n\n", e.Latency)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
