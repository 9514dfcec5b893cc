package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/tvlabel/internal/cache"
	"github.com/ppiankov/tvlabel/internal/corpus"
	"github.com/ppiankov/tvlabel/internal/eval"
	"github.com/ppiankov/tvlabel/internal/metrics"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
	"github.com/ppiankov/tvlabel/internal/tag"
	"github.com/ppiankov/tvlabel/internal/translate"
	"github.com/ppiankov/tvlabel/internal/worker"
)

var (
	provider         string
	translateModel   string
	translateOut     string
	resultsOut       string
	concurrency      int
	maxRetries       int
	translateTimeout time.Duration
	noCache          bool
	checkCompliance  bool
	httpProxy        string
	httpsProxy       string
)

// translateCmd represents the translate command
var translateCmd = &cobra.Command{
	Use:   "translate <file>",
	Short: "Translate tagged source lines with an external model",
	Long: `Translate sends every line of a tagged source file to a translation model.
A leading <T> or <V> tag asks for informal or formal address; untagged lines
are translated without a constraint. Output lines stay aligned with the
input: a failed line is written empty and reported.

API keys come from OPENAI_API_KEY, ANTHROPIC_API_KEY or TVLABEL_TRANSLATE_API_KEY.

Example:
  tvlabel translate test.en.tv --provider openai --model gpt-4o-mini
  tvlabel translate test.en.tv --provider ollama --model llama3.1 --check
  tvlabel translate test.en.tv --provider anthropic --results results.jsonl --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&provider, "provider", "", "translation provider (openai, anthropic, ollama) (default: translate.provider)")
	translateCmd.Flags().StringVar(&translateModel, "model", "", "model name (default: provider default)")
	translateCmd.Flags().StringVarP(&translateOut, "out", "o", "", "translations output (default: <file>.out)")
	translateCmd.Flags().StringVar(&resultsOut, "results", "", "also write per-line results as JSON Lines")
	translateCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent requests")
	translateCmd.Flags().IntVar(&maxRetries, "retries", 3, "retries of rate-limited or failed requests")
	translateCmd.Flags().DurationVar(&translateTimeout, "timeout", 0, "total timeout for translation (0 for none)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the translation cache")
	translateCmd.Flags().BoolVar(&checkCompliance, "check", false, "detect the address form of each translation and report tag compliance")
	translateCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	translateCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	translateCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	translateCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	file := args[0]

	// Command flags override the configuration
	if cmd.Flags().Changed("provider") {
		viper.Set("translate.provider", provider)
	}
	cfg, logger, lex, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("model") {
		cfg.Translate.Model = translateModel
	}
	if cmd.Flags().Changed("http-proxy") {
		cfg.Translate.HTTPProxy = httpProxy
	}
	if cmd.Flags().Changed("https-proxy") {
		cfg.Translate.HTTPSProxy = httpsProxy
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Output.MetricsFile = metricsFile
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noProgress {
		cfg.Output.Progress = false
	}

	out := translateOut
	if out == "" {
		out = file + ".out"
	}

	// 1. Provider
	p, err := translate.NewProvider(translate.ConfigFromModel(cfg.Translate))
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: set --provider or translate.provider", translate.ErrNoProvider)
	}

	ctx := context.Background()
	if translateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, translateTimeout)
		defer cancel()
	}

	checkCtx, cancelCheck := context.WithTimeout(ctx, 10*time.Second)
	available := p.IsAvailable(checkCtx)
	cancelCheck()
	if !available {
		return fmt.Errorf("translation provider %s is not available at %s", p.Name(), p.Endpoint())
	}

	tags, err := tag.NewSet(cfg.SideConstraint)
	if err != nil {
		return err
	}
	lines, err := corpus.ReadLinesFile(file)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  tvlabel Translation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s (%d lines)\n", file, len(lines))
	fmt.Fprintf(os.Stderr, "  Provider:     %s %s\n", p.Name(), cfg.Translate.Model)
	fmt.Fprintf(os.Stderr, "  Concurrency:  %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Rate limit:   %.1f req/s (burst %d)\n", cfg.Translate.RequestsPerSecond, cfg.Translate.BurstSize)
	fmt.Fprintf(os.Stderr, "\n")

	// 2. Translation
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache)
	}
	collector := metrics.New()
	tr, err := translate.NewTranslator(p, translate.Options{
		Tags:        tags,
		Limiter:     worker.NewLimiter(cfg.Translate.RequestsPerSecond, cfg.Translate.BurstSize),
		Cache:       c,
		Metrics:     collector,
		Logger:      logger,
		Model:       cfg.Translate.Model,
		Concurrency: concurrency,
		MaxRetries:  maxRetries,
	})
	if err != nil {
		return err
	}

	bar := startProgress(len(lines), cfg.Output.Progress)
	results, err := tr.TranslateLines(ctx, lines, func(translate.Result) { bar.Incr() })
	bar.Stop()
	if err != nil {
		return fmt.Errorf("translation stopped: %w", err)
	}

	// 3. Outputs
	translations := make([]string, len(results))
	failures, cached := 0, 0
	for i, r := range results {
		translations[i] = r.Translation
		if r.Error != "" {
			failures++
			fmt.Fprintf(os.Stderr, "✗ line %d: %s\n", r.Index+1, r.Error)
		}
		if r.Cached {
			cached++
		}
	}
	if err := corpus.WriteLinesFile(out, translations); err != nil {
		return err
	}
	if resultsOut != "" {
		if err := writeResults(resultsOut, results); err != nil {
			return err
		}
	}
	if cfg.Output.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Translation Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d lines\n", len(results))
	fmt.Fprintf(os.Stderr, "  Cached:    %d\n", cached)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", out)
	fmt.Fprintf(os.Stderr, "\n")

	if !checkCompliance {
		return nil
	}

	// 4. Tag compliance of the translations
	pl, err := newPipeline(cfg, lex, logger, pipeline.Options{})
	if err != nil {
		return err
	}
	records, err := detectTexts(ctx, pl, cfg, translations, "")
	if err != nil {
		return err
	}

	requested := make([]model.Label, len(results))
	detected := make([]model.Label, len(records))
	for i := range results {
		requested[i] = results[i].Address
		if results[i].Error != "" {
			// Nothing to detect on a failed line
			requested[i] = model.Unknown
		}
		detected[i] = records[i].Label
	}

	comp, signals, err := eval.NewEvaluator(eval.DefaultThresholds()).Compliance(requested, detected)
	if err != nil {
		return err
	}
	rep := newReport(model.ReportCompliance, out, pl.RunID(), signals)
	rep.Compliance = &comp
	return writeReport(cmd, cfg, rep)
}

// writeResults writes translation results as JSON Lines
func writeResults(path string, results []translate.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
