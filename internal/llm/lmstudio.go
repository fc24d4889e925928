package llm

import (
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// LMStudioClient runs the coach against LM Studio's local server.
type LMStudioClient struct {
	chatCompleter
	baseURL string
}

// lmStudioAPIKey returns the first key set in the environment. LM Studio
// ignores the key unless authentication is enabled, so a placeholder is
// used otherwise.
func lmStudioAPIKey() string {
	for _, name := range []string{"LMSTUDIO_API_KEY", "OPENAI_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return "lm-studio"
}

// NewLMStudioClient creates a client for the model loaded in LM Studio.
func NewLMStudioClient(model, baseURL string) (*LMStudioClient, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("lm studio model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	client := openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(lmStudioAPIKey()))
	return &LMStudioClient{
		chatCompleter: chatCompleter{client: client, model: model, name: "lm studio"},
		baseURL:       baseURL,
	}, nil
}
