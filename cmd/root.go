package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "deal-checker",
	Short:        "Used-vehicle deal valuation",
	Long:         "Scores used-vehicle listings, forecasts 24 month ROI and stabilizes results against past valuations.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
