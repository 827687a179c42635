// Package cli holds the aura command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "aura",
	Short:         "Bilingual disaster-response command dispatcher",
	Long:          "Matches English and Tamil operator commands to a fixed catalogue of robot missions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "log level: debug, info or error")
	flags.String("corpus", "", "path to a corpus JSON file (default: embedded corpus)")
	flags.String("provider", "", "embedding provider: python, gemini or hashing")
	flags.Float64("threshold", 0, "fuzzy match threshold, 0-100 exclusive lower bound")
	flags.String("cache", "", "path to the persistent embedding cache")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(corpusCmd)
}
