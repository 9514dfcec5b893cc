package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tvlabel/internal/lexicon"
)

// lexiconCmd represents the lexicon command
var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Inspect and validate lexicons",
}

var lexiconShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the loaded lexicon as YAML",
	Long: `Print every category of the lexicon in use: the built-in languages
(lexicon.languages) followed by user files (lexicon.files, --lexicon).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, lex, err := setup()
		if err != nil {
			return err
		}

		data, err := lexicon.Marshal(lex.Categories())
		if err != nil {
			return fmt.Errorf("error marshaling lexicon: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var lexiconCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a YAML lexicon file",
	Long: `Check loads a lexicon file together with the built-in lexicons and reports
contradicting entries, unknown classes and malformed YAML.

Example:
  tvlabel lexicon check my-lexicon.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cats, err := lexicon.LoadFile(args[0])
		if err != nil {
			return err
		}
		lex, err := lexicon.Build(cfg.Lexicon.Languages, []string{args[0]})
		if err != nil {
			return err
		}

		forms, lemmas := lex.Size()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d categories valid with %v (%d forms, %d lemmas in total)\n",
			args[0], len(cats), cfg.Lexicon.Languages, forms, lemmas)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexiconCmd)
	lexiconCmd.AddCommand(lexiconShowCmd)
	lexiconCmd.AddCommand(lexiconCheckCmd)
}
