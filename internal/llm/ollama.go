package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/ikersanz-debug/MyTracker/internal/logging"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient runs the coach against a local Ollama server.
type OllamaClient struct {
	client  *ollama.LLM
	model   string
	baseURL string
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if model == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	client, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}

	return &OllamaClient{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, opts ...llms.CallOption) (string, error) {
	start := time.Now()
	opts = append(opts, llms.WithModel(c.model), llms.WithTemperature(0.3))
	resp, err := c.client.GenerateContent(ctx, toLangChainMessages(messages), opts...)
	logging.L().Debug("llm_request", "provider", ProviderOllama, "model", c.model,
		"messages", len(messages), "elapsed", time.Since(start), "ok", err == nil)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Content, nil
}

// Chat returns the model's reply to messages.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.generate(ctx, messages)
}

// ChatJSON asks Ollama for JSON output and parses it into result.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.generate(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

var langChainRoles = map[string]llms.ChatMessageType{
	RoleSystem:    llms.ChatMessageTypeSystem,
	RoleAssistant: llms.ChatMessageTypeAI,
}

func toLangChainMessages(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		role, ok := langChainRoles[strings.ToLower(msg.Role)]
		if !ok {
			role = llms.ChatMessageTypeHuman
		}
		out[i] = llms.TextParts(role, msg.Content)
	}
	return out
}
