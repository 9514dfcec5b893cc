package translate

import (
	"fmt"
	"strings"
)

// NewProvider creates a translation provider based on configuration.
// An empty provider name returns nil, nil: translation disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown translation provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
