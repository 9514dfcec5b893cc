package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tvlabel/internal/corpus"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/tag"
)

var (
	sampleRecords  string
	sampleOut      string
	formalLimit    int
	informalLimit  int
	neutralLimit   int
	maxLength      int
	includeUnknown bool

	deixisOut string

	prependLabel string
	prependOut   string
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Build a class-balanced subcorpus from labeled records",
	Long: `Sample keeps labeled sentence pairs until each class reaches its limit.
Informal pairs are always considered; other pairs longer than --max-length
characters on the detection side are skipped. Unknown pairs are dropped
unless --include-unknown is set.

Writes <out>.en and <out>.ru in corpus order.

Example:
  tvlabel sample --records train.en.labels.jsonl --out balanced
  tvlabel sample --records train.en.labels.jsonl --out balanced --formal-limit 5000 --neutral-limit 20000`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

// deixisCmd represents the deixis command
var deixisCmd = &cobra.Command{
	Use:   "deixis <dir>",
	Short: "Reformat the deixis consistency test set",
	Long: `Deixis reads deixis_test and deixis_dev (.src English, .dst Russian) from
dir, splits every context group on "_eos", drops repeated Russian sentences
and sentences translated as a bare ".", and writes one aligned pair per line.

Example:
  tvlabel deixis ./good-translation-wrong-in-context/consistency_testsets/scoring_data --out deixis`,
	Args: cobra.ExactArgs(1),
	RunE: runDeixis,
}

// prependCmd represents the prepend command
var prependCmd = &cobra.Command{
	Use:   "prepend <file>",
	Short: "Prepend one side-constraint tag to every line",
	Long: `Prepend forces one form of address on a whole test set by prefixing every
line with the tag of --label.

Example:
  tvlabel prepend test.en --label formal --out test.v.en
  tvlabel prepend test.en --label T`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepend,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(deixisCmd)
	rootCmd.AddCommand(prependCmd)

	sampleCmd.Flags().StringVar(&sampleRecords, "records", "", "JSON Lines records written by label")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "sample", "output prefix")
	sampleCmd.Flags().IntVar(&formalLimit, "formal-limit", 0, "formal pairs to keep (default: sampling.formal_limit)")
	sampleCmd.Flags().IntVar(&informalLimit, "informal-limit", 0, "informal pairs to keep, 0 keeps all (default: sampling.informal_limit)")
	sampleCmd.Flags().IntVar(&neutralLimit, "neutral-limit", 0, "neutral pairs to keep (default: sampling.neutral_limit)")
	sampleCmd.Flags().IntVar(&maxLength, "max-length", 0, "skip non-informal sentences longer than this (default: sampling.max_length)")
	sampleCmd.Flags().BoolVar(&includeUnknown, "include-unknown", false, "keep unresolved pairs as neutral")
	_ = sampleCmd.MarkFlagRequired("records")

	deixisCmd.Flags().StringVarP(&deixisOut, "out", "o", "deixis", "output prefix")

	prependCmd.Flags().StringVar(&prependLabel, "label", "", "label whose tag is prepended (formal, informal, V, T)")
	prependCmd.Flags().StringVarP(&prependOut, "out", "o", "", "output file (default: <file>.<tag label>)")
	_ = prependCmd.MarkFlagRequired("label")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("formal-limit") {
		cfg.Sampling.FormalLimit = formalLimit
	}
	if flags.Changed("informal-limit") {
		cfg.Sampling.InformalLimit = informalLimit
	}
	if flags.Changed("neutral-limit") {
		cfg.Sampling.NeutralLimit = neutralLimit
	}
	if flags.Changed("max-length") {
		cfg.Sampling.MaxLength = maxLength
	}
	if includeUnknown {
		cfg.Sampling.IncludeUnknown = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	records, err := corpus.ReadRecordsFile(sampleRecords)
	if err != nil {
		return err
	}

	pairs := make([]corpus.Pair, len(records))
	labels := make([]model.Label, len(records))
	for i, r := range records {
		pairs[i] = corpus.Pair{Source: r.Source, Target: r.Target}
		labels[i] = r.Label
	}

	kept, stats := corpus.NewSampler(cfg.Sampling, cfg.Detection.Side).Sample(pairs, labels)
	sources, targets := corpus.Split(kept)
	if err := corpus.WriteLinesFile(sampleOut+".en", sources); err != nil {
		return err
	}
	if err := corpus.WriteLinesFile(sampleOut+".ru", targets); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Sampled %d of %d pairs into %s.en / %s.ru\n", len(kept), len(records), sampleOut, sampleOut)
	for _, l := range model.Labels {
		fmt.Fprintf(out, "  %-9s seen %6d  kept %6d\n", l, stats.Seen[l], stats.Kept[l])
	}
	if stats.TooLong > 0 {
		fmt.Fprintf(out, "  too long: %d\n", stats.TooLong)
	}
	return nil
}

func runDeixis(cmd *cobra.Command, args []string) error {
	pairs, err := corpus.ReformatDeixis(args[0])
	if err != nil {
		return err
	}

	sources, targets := corpus.Split(pairs)
	if err := corpus.WriteLinesFile(deixisOut+".en", sources); err != nil {
		return err
	}
	if err := corpus.WriteLinesFile(deixisOut+".ru", targets); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d sentence pairs to %s.en / %s.ru\n", len(pairs), deixisOut, deixisOut)
	return nil
}

func runPrepend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tags, err := tag.NewSet(cfg.SideConstraint)
	if err != nil {
		return err
	}

	label, err := model.ParseLabel(prependLabel)
	if err != nil {
		return err
	}
	token := tags.Token(label)
	if token == "" {
		return fmt.Errorf("label %s has no side-constraint tag", label)
	}

	out := prependOut
	if out == "" {
		out = args[0] + "." + label.Short()
	}

	n, err := corpus.PrependFile(args[0], out, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Prepended %s to %d lines: %s\n", token, n, out)
	return nil
}
