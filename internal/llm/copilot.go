package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ikersanz-debug/MyTracker/internal/logging"
)

const (
	copilotTokenURL = "https://api.github.com/copilot_internal/v2/token"
	copilotBaseURL  = "https://api.githubcopilot.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gpt-4o"

	userAgent = "MyTracker/1.0"
)

// CopilotClient talks to GitHub Copilot's chat endpoint.
type CopilotClient struct {
	chatCompleter
}

// copilotToken is a short-lived bearer token. A weekly insight is one
// request, so it is fetched once per client and never refreshed.
type copilotToken struct {
	Value     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (t copilotToken) expiry() time.Time {
	if t.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(t.ExpiresAt, 0)
}

// NewCopilotClient trades the stored GitHub token for a Copilot token and
// returns a client using it.
func NewCopilotClient(ctx context.Context, model string) (*CopilotClient, error) {
	if model == "" {
		model = DefaultModel
	}

	githubToken, err := LoadGitHubToken()
	if err != nil {
		return nil, fmt.Errorf("loading GitHub token: %w", err)
	}

	tok, err := fetchCopilotToken(ctx, &http.Client{Timeout: 30 * time.Second}, copilotTokenURL, githubToken)
	if err != nil {
		return nil, fmt.Errorf("exchanging token: %w", err)
	}
	logging.L().Debug("copilot_token", "model", model, "expires", tok.expiry())

	client := openai.NewClient(
		option.WithBaseURL(copilotBaseURL),
		option.WithAPIKey(tok.Value),
		option.WithHeader("Editor-Version", userAgent),
		option.WithHeader("Editor-Plugin-Version", userAgent),
		option.WithHeader("Copilot-Integration-Id", "vscode-chat"),
	)
	return &CopilotClient{chatCompleter{client: client, model: model, name: ProviderCopilot}}, nil
}

func fetchCopilotToken(ctx context.Context, hc *http.Client, url, githubToken string) (copilotToken, error) {
	var tok copilotToken

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tok, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+githubToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return tok, fmt.Errorf("requesting copilot token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return tok, fmt.Errorf("copilot token request failed (status %d): %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return tok, fmt.Errorf("decoding copilot token: %w", err)
	}
	if tok.Value == "" {
		return tok, errors.New("copilot token response has no token")
	}
	return tok, nil
}
