package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported providers.
const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// NewClient creates an LLM client based on provider configuration.
// ctx bounds the Copilot token exchange.
func NewClient(ctx context.Context, provider, model, baseURL string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderCopilot:
		return NewCopilotClient(ctx, model)
	case ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderLMStudio, "lm-studio":
		return NewLMStudioClient(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
