package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wgomg/aura/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect command corpora",
}

var corpusValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Load a corpus file and report problems",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCorpusValidate,
}

var corpusExamplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Print random English example commands",
	Args:  cobra.NoArgs,
	RunE:  runCorpusExamples,
}

func init() {
	corpusExamplesCmd.Flags().IntP("n", "n", 5, "number of examples")

	corpusCmd.AddCommand(corpusValidateCmd)
	corpusCmd.AddCommand(corpusExamplesCmd)
}

func runCorpusValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("corpus")
	if len(args) == 1 {
		path = args[0]
	}

	c, err := corpus.Open(path)
	if err != nil {
		return err
	}

	var tamil, critical int
	for _, rec := range c.Records() {
		if rec.HasTamil() {
			tamil++
		}
		if rec.SafetyCritical {
			critical++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d commands, %d with Tamil phrasing, %d safety critical\n",
		c.Source(), c.Len(), tamil, critical)
	return nil
}

func runCorpusExamples(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("corpus")
	n, _ := cmd.Flags().GetInt("n")

	c, err := corpus.Open(path)
	if err != nil {
		return err
	}

	for _, example := range c.SampleEnglish(n, nil) {
		fmt.Fprintln(cmd.OutOrStdout(), example)
	}
	return nil
}
