package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Provider defines the interface for translation model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Endpoint returns the base URL requests are sent to, used for rate limiting
	Endpoint() string

	// Translate translates one sentence honouring the requested address form
	Translate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one translation
type Request struct {
	// Text is the source sentence without its side-constraint tag
	Text string

	// Address is the requested form of address: Formal, Informal, or
	// Neutral/Unknown for no constraint
	Address model.Label

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the provider's translation
type Response struct {
	Translation string
	Model       string
	TokensUsed  int
}

// Config holds translation provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	SourceLanguage string
	TargetLanguage string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts model.TranslateConfig to translate.Config
func ConfigFromModel(c model.TranslateConfig) Config {
	return Config{
		Provider:       c.Provider,
		Model:          c.Model,
		APIKey:         c.APIKey,
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		MaxTokens:      c.MaxTokens,
		SourceLanguage: c.SourceLanguage,
		TargetLanguage: c.TargetLanguage,
		HTTPProxy:      c.HTTPProxy,
		HTTPSProxy:     c.HTTPSProxy,
		NoProxy:        c.NoProxy,
	}
}

const systemPrompt = "You are a translation engine. Reply with the translation only, without quotes, notes or alternatives."

// BuildPrompt constructs the default translation prompt
func BuildPrompt(cfg Config, req Request) string {
	src, tgt := cfg.SourceLanguage, cfg.TargetLanguage
	if src == "" {
		src = "English"
	}
	if tgt == "" {
		tgt = "Russian"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %s sentence into %s.\n", src, tgt)

	switch req.Address {
	case model.Formal:
		b.WriteString("Address the listener formally: use the polite plural form of \"you\" (V form, e.g. \"вы\", \"ваш\") and matching plural verb forms.\n")
	case model.Informal:
		b.WriteString("Address the listener informally: use the familiar singular form of \"you\" (T form, e.g. \"ты\", \"твой\") and matching singular verb forms.\n")
	}

	fmt.Fprintf(&b, "\n%s", req.Text)
	return b.String()
}

// cleanTranslation trims whitespace and one pair of wrapping quotes
func cleanTranslation(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{`"`, `"`}, {"«", "»"}, {"“", "”"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			return strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}

func resolveModel(req Request, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}

func resolveMaxTokens(req Request, cfg Config) int {
	if req.MaxTokens != 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens != 0 {
		return cfg.MaxTokens
	}
	return 512
}
