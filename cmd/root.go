package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "policyrag",
	Short: "Document-grounded question answering over railway policy documents",
	Long: `Policyrag indexes a directory of policy documents (PDF, Markdown,
plain text) into a local vector database and answers natural-language
questions about them. Answers are grounded in the retrieved passages,
with refund calculations shown step by step.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "policyrag.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
