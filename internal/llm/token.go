package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoGitHubToken is returned when no GitHub credentials can be found.
var ErrNoGitHubToken = errors.New("GitHub token not found: set GITHUB_TOKEN or sign in to GitHub Copilot in your editor")

// LoadGitHubToken returns the GitHub OAuth token used for Copilot. GITHUB_TOKEN
// wins; otherwise the Copilot editor plugins' hosts.json and apps.json are read.
func LoadGitHubToken() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	dir, err := copilotConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}
	for _, name := range []string{"hosts.json", "apps.json"} {
		if token, err := tokenFromFile(filepath.Join(dir, name)); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrNoGitHubToken
}

func copilotConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" && runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
	}
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
		if runtime.GOOS == "windows" {
			base = filepath.Join(home, "AppData", "Local")
		}
	}
	return filepath.Join(base, "github-copilot"), nil
}

// tokenFromFile extracts the oauth_token of the github.com entry.
func tokenFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var hosts map[string]struct {
		OAuthToken string `json:"oauth_token"`
	}
	if err := json.Unmarshal(data, &hosts); err != nil {
		return "", err
	}
	for key, entry := range hosts {
		if strings.Contains(key, "github.com") && entry.OAuthToken != "" {
			return entry.OAuthToken, nil
		}
	}
	return "", fmt.Errorf("oauth_token not found in %s", path)
}
