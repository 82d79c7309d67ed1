package cmd

import (
	"github.com/spf13/cobra"

	"policyrag/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize policyrag configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure policyrag and generates a policyrag.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
