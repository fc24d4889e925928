package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"

	"github.com/ikersanz-debug/MyTracker/internal/logging"
)

// errNoChoices is returned when a provider answers without any completion.
var errNoChoices = errors.New("no response choices returned")

// chatCompleter is an OpenAI-compatible chat endpoint. Copilot and LM Studio
// both speak this protocol and only differ in how they authenticate.
type chatCompleter struct {
	client openai.Client
	model  string
	name   string // prefixes errors, e.g. "lm studio"
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}

// Chat sends messages to the LLM and returns the response.
func (c *chatCompleter) Chat(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	})
	logging.L().Debug("llm_request", "provider", c.name, "model", c.model,
		"messages", len(messages), "elapsed", time.Since(start), "ok", err == nil)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *chatCompleter) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

// decodeJSON unmarshals the JSON payload found in content, which may be
// wrapped in prose or a markdown code fence.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}
