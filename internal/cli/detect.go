package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/corpus"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/repl"
	"github.com/ppiankov/tvlabel/internal/report"
)

var (
	detectConllu string
	detectJSON   bool
	detectSide   string
	precedence   string
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [sentence...]",
	Short: "Detect the form of address in sentences",
	Long: `Detect runs both detectors and the resolver on each sentence and prints
every verdict with the cues that produced it.

Sentences come from the arguments, from a CoNLL-U file (--conllu, which also
enables the structural detector), or from stdin, one per line.

Example:
  tvlabel detect "Вы придёте завтра?"
  tvlabel detect --conllu parsed.conllu --json
  cat sentences.ru | tvlabel detect --precedence abstain`,
	RunE: runDetect,
}

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive detection prompt",
	Long: `Start an interactive prompt: every line typed is run through the
detectors and its verdicts are printed. Type :help for commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, lex, err := setup()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("precedence") {
			cfg.Detection.Precedence = precedence
		}

		p, err := newPipeline(cfg, lex, logger, pipeline.Options{})
		if err != nil {
			return err
		}

		return repl.NewHandler(p, lex, cmd.OutOrStdout()).Run()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(replCmd)

	detectCmd.Flags().StringVar(&detectConllu, "conllu", "", "CoNLL-U parser output to detect on")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print detections as JSON")
	detectCmd.Flags().StringVar(&detectSide, "side", "", "language side of the sentences (target, source)")
	detectCmd.Flags().StringVar(&precedence, "precedence", "", "specific vs non-specific precedence (specific, structural, lexical, abstain)")
	replCmd.Flags().StringVar(&precedence, "precedence", "", "specific vs non-specific precedence (specific, structural, lexical, abstain)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, logger, lex, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("precedence") {
		cfg.Detection.Precedence = precedence
	}
	if cmd.Flags().Changed("side") {
		cfg.Detection.Side = detectSide
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	p, err := newPipeline(cfg, lex, logger, pipeline.Options{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	emit := func(d pipeline.Detection) error {
		if detectJSON {
			return report.RenderDetectionJSON(out, d)
		}
		report.RenderDetection(out, d)
		fmt.Fprintln(out)
		return nil
	}

	// 1. Parsed sentences
	if detectConllu != "" {
		sentences, err := conllu.ReadFile(detectConllu)
		if err != nil {
			return err
		}
		for i := range sentences {
			if err := emit(p.Detect(sentences[i].Text, &sentences[i])); err != nil {
				return err
			}
		}
		return nil
	}

	// 2. Plain sentences
	lines := args
	if len(lines) == 0 {
		lines, err = corpus.ReadLines(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		if err := emit(p.Detect(line, nil)); err != nil {
			return err
		}
	}
	return nil
}
