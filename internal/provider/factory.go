package provider

import (
	"fmt"
	"strings"
)

// New creates the configured provider. Unknown names and missing settings
// fail here, at construction, never at call time.
func New(config Config) (Provider, error) {
	switch strings.ToLower(config.Name) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "keyword", "":
		return NewKeywordProvider(config), nil

	default:
		return nil, fmt.Errorf("unknown provider %q (supported: openai, anthropic, ollama, keyword)", config.Name)
	}
}
