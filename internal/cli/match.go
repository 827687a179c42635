package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <text...>",
	Short: "Match one command and print the record as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	match, err := a.service.Match(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	logger.Info(nil, "Matched %s via %s (score=%.4f)", match.ID, match.Method, match.Score)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(match)
}
