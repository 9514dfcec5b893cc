package model

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config holds the complete tvlabel configuration
type Config struct {
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
	Lexicon        LexiconConfig        `yaml:"lexicon" mapstructure:"lexicon"`
	Detection      DetectionConfig      `yaml:"detection" mapstructure:"detection"`
	SideConstraint SideConstraintConfig `yaml:"side_constraint" mapstructure:"side_constraint"`
	Sampling       SamplingConfig       `yaml:"sampling" mapstructure:"sampling"`
	Concurrency    ConcurrencyConfig    `yaml:"concurrency" mapstructure:"concurrency"`
	Cache          CacheConfig          `yaml:"cache" mapstructure:"cache"`
	Translate      TranslateConfig      `yaml:"translate" mapstructure:"translate"`
	Output         OutputConfig         `yaml:"output" mapstructure:"output"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// LexiconConfig selects the word lists used by the detectors
type LexiconConfig struct {
	Languages []string `yaml:"languages" mapstructure:"languages"` // Built-in lexicons to load (ru, en)
	Files     []string `yaml:"files" mapstructure:"files"`         // Additional YAML lexicon files
}

// DetectionConfig controls detector and resolver behaviour
type DetectionConfig struct {
	// Side is the corpus side the detectors read: "target" (Russian) or "source"
	Side string `yaml:"side" mapstructure:"side"`

	// Precedence decides between a specific and a non-specific verdict:
	// specific, structural, lexical or abstain
	Precedence string `yaml:"precedence" mapstructure:"precedence"`

	// Structural enables the grammar-based detector when CoNLL-U input is given
	Structural bool `yaml:"structural" mapstructure:"structural"`
}

// SideConstraintConfig maps labels to the tokens prepended to source sentences
type SideConstraintConfig struct {
	Formal   string `yaml:"formal" mapstructure:"formal"`
	Informal string `yaml:"informal" mapstructure:"informal"`
	Neutral  string `yaml:"neutral" mapstructure:"neutral"` // Empty means no tag
	Unknown  string `yaml:"unknown" mapstructure:"unknown"` // Empty means no tag
}

// SamplingConfig holds the class limits of the balanced subcorpus
type SamplingConfig struct {
	FormalLimit    int  `yaml:"formal_limit" mapstructure:"formal_limit"` // 0 means no limit, for every class
	InformalLimit  int  `yaml:"informal_limit" mapstructure:"informal_limit"`
	NeutralLimit   int  `yaml:"neutral_limit" mapstructure:"neutral_limit"`
	MaxLength      int  `yaml:"max_length" mapstructure:"max_length"` // Non-T sentences longer than this (runes) are skipped
	IncludeUnknown bool `yaml:"include_unknown" mapstructure:"include_unknown"`
}

// ConcurrencyConfig holds worker settings
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig holds verdict and translation cache settings
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// TranslateConfig holds external translation model settings
type TranslateConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	SourceLanguage    string  `yaml:"source_language" mapstructure:"source_language"`
	TargetLanguage    string  `yaml:"target_language" mapstructure:"target_language"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	Progress      bool   `yaml:"progress" mapstructure:"progress"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`      // Footer in Markdown reports
	MetricsFile   string `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"` // Prometheus textfile written after labeling
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Lexicon: LexiconConfig{
			Languages: []string{"ru", "en"},
		},
		Detection: DetectionConfig{
			Side:       "target",
			Precedence: "specific",
			Structural: true,
		},
		SideConstraint: SideConstraintConfig{
			Formal:   "<V>",
			Informal: "<T>",
		},
		Sampling: SamplingConfig{
			FormalLimit:   22000,
			InformalLimit: 0,
			NeutralLimit:  100000,
			MaxLength:     100,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".tvlabel-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Translate: TranslateConfig{
			Provider:          "",
			Timeout:           60,
			MaxTokens:         512,
			SourceLanguage:    "English",
			TargetLanguage:    "Russian",
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			Progress:      true,
			IncludeFooter: true,
		},
	}
}

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	switch c.Detection.Side {
	case "source", "target":
	default:
		errs = append(errs, fmt.Errorf("detection.side must be source or target, got %q", c.Detection.Side))
	}

	switch c.Detection.Precedence {
	case "specific", "structural", "lexical", "abstain":
	default:
		errs = append(errs, fmt.Errorf("detection.precedence must be specific, structural, lexical or abstain, got %q", c.Detection.Precedence))
	}

	if c.SideConstraint.Formal == "" || c.SideConstraint.Informal == "" {
		errs = append(errs, errors.New("side_constraint.formal and side_constraint.informal must be set"))
	}
	if c.SideConstraint.Formal == c.SideConstraint.Informal {
		errs = append(errs, fmt.Errorf("side_constraint.formal and side_constraint.informal must differ, both are %q", c.SideConstraint.Formal))
	}

	if c.Sampling.FormalLimit < 0 || c.Sampling.InformalLimit < 0 || c.Sampling.NeutralLimit < 0 {
		errs = append(errs, errors.New("sampling limits must not be negative"))
	}
	if c.Sampling.MaxLength < 0 {
		errs = append(errs, errors.New("sampling.max_length must not be negative"))
	}

	if c.Concurrency.Workers <= 0 {
		errs = append(errs, fmt.Errorf("concurrency.workers must be positive, got %d", c.Concurrency.Workers))
	}

	return errors.Join(errs...)
}
