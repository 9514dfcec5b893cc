package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tvlabel/internal/conllu"
	"github.com/ppiankov/tvlabel/internal/corpus"
	"github.com/ppiankov/tvlabel/internal/eval"
	"github.com/ppiankov/tvlabel/internal/metrics"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/worker"
)

var (
	sourcePath   string
	targetPath   string
	conlluPath   string
	recordsOut   string
	markSource   bool
	metricsFile  string
	workers      int
	labelTimeout time.Duration
	noProgress   bool
)

// labelCmd represents the label command
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label a parallel corpus with T/V tags",
	Long: `Label processes a sentence-aligned corpus concurrently:
- Read aligned source (English) and target (Russian) files
- Attach CoNLL-U parser output of the detection side when given
- Run both detectors and the resolver on every sentence
- Write one JSON record per sentence with the verdicts and provenance
- Optionally write <source>.tv with side-constraint tags prepended

Example:
  tvlabel label --source train.en --target train.ru
  tvlabel label --source train.en --target train.ru --conllu train.ru.conllu --mark
  tvlabel label --source train.en --target train.ru --out - --no-progress | jq .label`,
	Args: cobra.NoArgs,
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().StringVar(&sourcePath, "source", "", "source (English) sentence file, one per line")
	labelCmd.Flags().StringVar(&targetPath, "target", "", "target (Russian) sentence file, aligned with --source")
	labelCmd.Flags().StringVar(&conlluPath, "conllu", "", "CoNLL-U parser output of the detection side")
	labelCmd.Flags().StringVarP(&recordsOut, "out", "o", "", "JSON Lines output (default: <source>.labels.jsonl, - for stdout)")
	labelCmd.Flags().BoolVar(&markSource, "mark", false, "write <source>.tv with tags prepended")
	labelCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	labelCmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (default: concurrency.workers)")
	labelCmd.Flags().DurationVar(&labelTimeout, "timeout", 0, "total timeout for labeling (0 for none)")
	labelCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	labelCmd.Flags().StringVar(&precedence, "precedence", "", "specific vs non-specific precedence (specific, structural, lexical, abstain)")

	_ = labelCmd.MarkFlagRequired("source")
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, logger, lex, err := setup()
	if err != nil {
		return err
	}

	// Command flags override the configuration
	if cmd.Flags().Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if cmd.Flags().Changed("precedence") {
		cfg.Detection.Precedence = precedence
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Output.MetricsFile = metricsFile
	}
	if noProgress {
		cfg.Output.Progress = false
	}
	if targetPath == "" {
		cfg.Detection.Side = "source"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := recordsOut
	if out == "" {
		out = sourcePath + ".labels.jsonl"
	}

	ctx := context.Background()
	if labelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, labelTimeout)
		defer cancel()
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  tvlabel Corpus Labeling\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:       %s\n", sourcePath)
	if targetPath != "" {
		fmt.Fprintf(os.Stderr, "  Target:       %s\n", targetPath)
	}
	if conlluPath != "" {
		fmt.Fprintf(os.Stderr, "  Parses:       %s\n", conlluPath)
	}
	fmt.Fprintf(os.Stderr, "  Detect on:    %s\n", cfg.Detection.Side)
	fmt.Fprintf(os.Stderr, "  Precedence:   %s\n", cfg.Detection.Precedence)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	// 1. Corpus
	items, err := loadItems(sourcePath, targetPath, conlluPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d sentence pairs\n", len(items))

	// 2. Labeling
	collector := metrics.New()
	p, err := newPipeline(cfg, lex, logger, pipeline.Options{Metrics: collector})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Labeling with %d workers...\n", cfg.Concurrency.Workers)
	records, err := labelItems(ctx, p, items, cfg.Concurrency.Workers, cfg.Output.Progress)
	if err != nil {
		return err
	}

	labels := make([]model.Label, len(records))
	failures := 0
	for i, r := range records {
		labels[i] = r.Label
		if r.Error != "" {
			failures++
		}
	}

	// 3. Outputs
	if err := writeRecords(out, records); err != nil {
		return err
	}
	if markSource {
		sources := make([]string, len(items))
		for i, it := range items {
			sources[i] = it.Source
		}
		marked, err := corpus.MarkFile(sourcePath, sources, labels, p.Tags())
		if err != nil {
			return fmt.Errorf("mark source: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Marked source: %s\n", marked)
	}
	if cfg.Output.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Metrics: %s\n", cfg.Output.MetricsFile)
	}

	// Summary
	dist := eval.Distribute(labels)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Labeling Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run ID:    %s\n", p.RunID())
	fmt.Fprintf(os.Stderr, "  Total:     %d sentences\n", dist.Total)
	fmt.Fprintf(os.Stderr, "  Skipped:   %d\n", failures)
	if out != "-" {
		fmt.Fprintf(os.Stderr, "  Records:   %s\n", out)
	}
	fmt.Fprintf(os.Stderr, "\n  %s\n\n", eval.Summary(dist))

	return nil
}

// loadItems reads the aligned corpus and, when given, the parser output of
// the detection side. Parses must align one to one with the lines.
func loadItems(source, target, parses string) ([]pipeline.Item, error) {
	pairs, err := corpus.ReadPairs(source, target)
	if err != nil {
		return nil, err
	}

	var sentences []model.Sentence
	if parses != "" {
		sentences, err = conllu.ReadFile(parses)
		if err != nil {
			return nil, err
		}
		if len(sentences) != len(pairs) {
			return nil, fmt.Errorf("%s has %d sentences but the corpus has %d lines", parses, len(sentences), len(pairs))
		}
	}

	items := make([]pipeline.Item, len(pairs))
	for i, pair := range pairs {
		items[i] = pipeline.Item{Index: i, Source: pair.Source, Target: pair.Target}
		if sentences != nil {
			items[i].Parse = &sentences[i]
		}
	}
	return items, nil
}

// labelItems runs items through the pipeline on a worker pool and returns the
// records in item order.
func labelItems(ctx context.Context, p *pipeline.Pipeline, items []pipeline.Item, workers int, progress bool) ([]model.Record, error) {
	bar := startProgress(len(items), progress)
	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessItems(ctx, items, func(*worker.LabelResult) { bar.Incr() })
	bar.Stop()
	if err != nil {
		return nil, fmt.Errorf("labeling stopped after %d of %d sentences: %w", len(results), len(items), err)
	}

	records := make([]model.Record, len(results))
	for i, r := range results {
		records[i] = r.Record
	}
	return records, nil
}

// writeRecords writes records as JSON Lines to path, or to stdout for "-"
func writeRecords(path string, records []model.Record) error {
	if path != "-" {
		return corpus.WriteRecordsFile(path, records)
	}

	w := corpus.NewRecordWriter(os.Stdout)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}
