package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/corpus"
	"github.com/ppiankov/tvlabel/internal/eval"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/report"
	"github.com/ppiankov/tvlabel/internal/tag"
)

var (
	evalJSON     string
	evalMarkdown string
	evalRecords  string
	evalConllu   string
	evalSource   string
	noFooter     bool
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate labels, detectors and translations",
	Long: `Evaluation commands produce a report with transparent signals. The
report summary is printed; --json and --md write the full report.`,
}

var evalGoldCmd = &cobra.Command{
	Use:   "gold <file>",
	Short: "Check the detectors against gold labels",
	Long: `Gold runs the detectors on a tagged file ("<V> Вы придёте?") and compares
their labels with the tags; untagged lines are gold neutral.

With --records, the labels of an existing labeling run are scored instead and
<file> holds one gold label per line (formal, informal, neutral, unknown or
V, T, N, U).

Example:
  tvlabel eval gold testdata/gold.ru.tagged
  tvlabel eval gold gold.labels --records train.en.labels.jsonl --md gold.md`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalGold,
}

var evalCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the token-based and grammar-based detectors",
	Long: `Compare reads records labeled with parser output and reports how many T/V
sentences each detector found, their ratio and the agreement matrix.

Example:
  tvlabel eval compare --records train.en.labels.jsonl`,
	Args: cobra.NoArgs,
	RunE: runEvalCompare,
}

var evalStatsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Count T, V and neutral sentences",
	Long: `Stats reports the label distribution of a labeling run (.jsonl records)
or of a tagged text file, where untagged lines count as neutral.

Example:
  tvlabel eval stats train.en.labels.jsonl
  tvlabel eval stats train.en.tv`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalStats,
}

var evalComplianceCmd = &cobra.Command{
	Use:   "compliance <translations>",
	Short: "Check translations against the requested tags",
	Long: `Compliance detects the form of address in each translation and compares it
with the tag requested on the aligned source line (--source). Only <T> and
<V> requests count.

Example:
  tvlabel eval compliance test.ru.out --source test.en.tv
  tvlabel eval compliance test.ru.out --source test.en.tv --conllu test.ru.out.conllu --json compliance.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalCompliance,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.AddCommand(evalGoldCmd)
	evalCmd.AddCommand(evalCompareCmd)
	evalCmd.AddCommand(evalStatsCmd)
	evalCmd.AddCommand(evalComplianceCmd)

	evalCmd.PersistentFlags().StringVar(&evalJSON, "json", "", "write the report as JSON to this path")
	evalCmd.PersistentFlags().StringVar(&evalMarkdown, "md", "", "write the report as Markdown to this path")
	evalCmd.PersistentFlags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	evalGoldCmd.Flags().StringVar(&evalRecords, "records", "", "score the labels of these JSON Lines records")
	evalGoldCmd.Flags().StringVar(&evalConllu, "conllu", "", "CoNLL-U parser output aligned with the gold file")
	evalCompareCmd.Flags().StringVar(&evalRecords, "records", "", "JSON Lines records labeled with parser output")
	_ = evalCompareCmd.MarkFlagRequired("records")
	evalComplianceCmd.Flags().StringVar(&evalSource, "source", "", "tagged source file the translations were requested with")
	evalComplianceCmd.Flags().StringVar(&evalConllu, "conllu", "", "CoNLL-U parser output of the translations")
	_ = evalComplianceCmd.MarkFlagRequired("source")
}

func runEvalGold(cmd *cobra.Command, args []string) error {
	cfg, logger, lex, err := setup()
	if err != nil {
		return err
	}

	lines, err := corpus.ReadLinesFile(args[0])
	if err != nil {
		return err
	}

	var (
		gold    []model.Label
		records []model.Record
		runID   string
	)
	if evalRecords != "" {
		// 1a. Existing labeling run
		if gold, err = eval.ParseGoldLabels(lines); err != nil {
			return err
		}
		if records, err = corpus.ReadRecordsFile(evalRecords); err != nil {
			return err
		}
		runID = runIDOf(records)
	} else {
		// 1b. Fresh detection on the tagged file
		tags, err := tag.NewSet(cfg.SideConstraint)
		if err != nil {
			return err
		}
		var texts []string
		gold, texts = eval.GoldFromTagged(lines, tags)

		p, err := newPipeline(cfg, lex, logger, pipeline.Options{})
		if err != nil {
			return err
		}
		records, err = detectTexts(cmd.Context(), p, cfg, texts, evalConllu)
		if err != nil {
			return err
		}
		runID = p.RunID()
	}

	// 2. Scoring
	res, signals, err := eval.NewEvaluator(eval.DefaultThresholds()).Gold(gold, records)
	if err != nil {
		return err
	}

	rep := newReport(model.ReportGold, args[0], runID, signals)
	rep.Gold = &res
	return writeReport(cmd, cfg, rep)
}

func runEvalCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := corpus.ReadRecordsFile(evalRecords)
	if err != nil {
		return err
	}

	c, signals, skipped, err := eval.NewEvaluator(eval.DefaultThresholds()).CompareRecords(records)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d of %d records have no structural verdict and were skipped\n", skipped, len(records))
	}

	rep := newReport(model.ReportCompare, evalRecords, runIDOf(records), signals)
	rep.Comparison = &c
	return writeReport(cmd, cfg, rep)
}

func runEvalStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		labels []model.Label
		runID  string
	)
	if strings.HasSuffix(args[0], ".jsonl") {
		records, err := corpus.ReadRecordsFile(args[0])
		if err != nil {
			return err
		}
		labels = make([]model.Label, len(records))
		for i, r := range records {
			labels[i] = r.Label
		}
		runID = runIDOf(records)
	} else {
		lines, err := corpus.ReadLinesFile(args[0])
		if err != nil {
			return err
		}
		tags, err := tag.NewSet(cfg.SideConstraint)
		if err != nil {
			return err
		}
		labels, _ = eval.GoldFromTagged(lines, tags)
	}

	d, signals := eval.NewEvaluator(eval.DefaultThresholds()).Stats(labels)
	rep := newReport(model.ReportStats, args[0], runID, signals)
	rep.Distribution = &d
	return writeReport(cmd, cfg, rep)
}

func runEvalCompliance(cmd *cobra.Command, args []string) error {
	cfg, logger, lex, err := setup()
	if err != nil {
		return err
	}

	// 1. Requested tags
	sources, err := corpus.ReadLinesFile(evalSource)
	if err != nil {
		return err
	}
	tags, err := tag.NewSet(cfg.SideConstraint)
	if err != nil {
		return err
	}
	requested, _ := eval.GoldFromTagged(sources, tags)

	// 2. Detected labels of the translations
	translations, err := corpus.ReadLinesFile(args[0])
	if err != nil {
		return err
	}
	if len(translations) != len(sources) {
		return fmt.Errorf("%w: %s has %d lines but %s has %d", eval.ErrLengthMismatch, evalSource, len(sources), args[0], len(translations))
	}

	p, err := newPipeline(cfg, lex, logger, pipeline.Options{})
	if err != nil {
		return err
	}
	records, err := detectTexts(cmd.Context(), p, cfg, translations, evalConllu)
	if err != nil {
		return err
	}
	detected := make([]model.Label, len(records))
	for i, r := range records {
		detected[i] = r.Label
	}

	// 3. Compliance
	c, signals, err := eval.NewEvaluator(eval.DefaultThresholds()).Compliance(requested, detected)
	if err != nil {
		return err
	}

	rep := newReport(model.ReportCompliance, args[0], p.RunID(), signals)
	rep.Compliance = &c
	return writeReport(cmd, cfg, rep)
}

// detectTexts labels standalone sentences, with their parser output when a
// CoNLL-U file is given. Each text fills both sides of its item.
func detectTexts(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config, texts []string, parses string) ([]model.Record, error) {
	var sentences []model.Sentence
	if parses != "" {
		var err error
		sentences, err = conllu.ReadFile(parses)
		if err != nil {
			return nil, err
		}
		if len(sentences) != len(texts) {
			return nil, fmt.Errorf("%s has %d sentences but %d lines were given", parses, len(sentences), len(texts))
		}
	}

	items := make([]pipeline.Item, len(texts))
	for i, t := range texts {
		items[i] = pipeline.Item{Index: i, Source: t, Target: t}
		if sentences != nil {
			items[i].Parse = &sentences[i]
		}
	}

	return labelItems(ctx, p, items, cfg.Concurrency.Workers, false)
}

func newReport(kind model.ReportKind, subject, runID string, signals []model.Signal) *model.Report {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &model.Report{
		Kind:        kind,
		Subject:     subject,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Signals:     signals,
	}
}

func runIDOf(records []model.Record) string {
	if len(records) == 0 {
		return ""
	}
	return records[0].RunID
}

// writeReport prints the summary and writes the requested report files
func writeReport(cmd *cobra.Command, cfg *model.Config, rep *model.Report) error {
	includeFooter := cfg.Output.IncludeFooter && !noFooter
	renderer := report.NewRenderer(includeFooter)

	renderer.RenderSummary(cmd.OutOrStdout(), rep)

	if evalJSON != "" {
		if err := renderer.RenderJSON(rep, evalJSON); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", evalJSON)
	}
	if evalMarkdown != "" {
		if err := renderer.RenderMarkdown(rep, evalMarkdown); err != nil {
			return fmt.Errorf("failed to write Markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", evalMarkdown)
	}
	return nil
}
