package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tvlabel/internal/cache"
	"github.com/ppiankov/tvlabel/internal/lexicon"
	"github.com/ppiankov/tvlabel/internal/logging"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/pipeline"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile      string
	verbose      bool
	logLevel     string
	logFormat    string
	lexiconFiles []string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tvlabel",
	Short: "tvlabel - T/V politeness labeling for English-Russian parallel corpora",
	Long: `tvlabel labels parallel sentences with the form of address used in the
Russian translation: informal (T, "ты") or formal (V, "вы").

Two detectors run on each sentence: a lexical one that looks up pronouns,
possessives and verb forms, and a structural one that reads person and
number agreement from dependency parser output (CoNLL-U). A resolver
combines them into one label with its provenance.

Labels are turned into side-constraint tags (<T>, <V>) that are prepended to
source sentences to train and evaluate politeness-controlled translation.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of tvlabel.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tvlabel %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tvlabel/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().StringSliceVar(&lexiconFiles, "lexicon", nil, "additional YAML lexicon file (repeatable)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".tvlabel"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TVLABEL_*; nested keys use
	// underscores, e.g. TVLABEL_DETECTION_PRECEDENCE
	viper.SetEnvPrefix("TVLABEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Keys the default config omits from YAML
	for _, key := range []string{
		"translate.api_key", "translate.base_url",
		"translate.http_proxy", "translate.https_proxy", "translate.no_proxy",
		"output.metrics_file",
	} {
		_ = viper.BindEnv(key)
	}

	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so environment
// variables apply to keys absent from the config file.
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig builds the effective configuration: defaults, config file,
// environment, global flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if len(lexiconFiles) > 0 {
		cfg.Lexicon.Files = append(cfg.Lexicon.Files, lexiconFiles...)
	}

	// Provider keys from the usual environment variables
	if cfg.Translate.APIKey == "" {
		switch strings.ToLower(cfg.Translate.Provider) {
		case "openai":
			cfg.Translate.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Translate.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Translate.BaseURL == "" && strings.EqualFold(cfg.Translate.Provider, "ollama") {
		cfg.Translate.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger and lexicon every
// labeling command needs.
func setup() (*model.Config, *slog.Logger, *lexicon.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.New(cfg.Log)

	lex, err := lexicon.Build(cfg.Lexicon.Languages, cfg.Lexicon.Files)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	forms, lemmas := lex.Size()
	logger.Debug("lexicon loaded", "languages", lex.Languages(), "forms", forms, "lemmas", lemmas)

	return cfg, logger, lex, nil
}

// newPipeline builds the labeling pipeline. Lexical verdicts are memoised in
// memory only: they depend on the lexicon loaded for this run.
func newPipeline(cfg *model.Config, lex *lexicon.Store, logger *slog.Logger, opts pipeline.Options) (*pipeline.Pipeline, error) {
	opts.Logger = logger
	if opts.Cache == nil && cfg.Cache.Enabled {
		opts.Cache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
	}
	return pipeline.NewPipeline(cfg, lex, opts)
}
