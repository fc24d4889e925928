package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Init(true, path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	L().Debug("session_added", "id", "42")
	if err := Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[1], `"msg":"session_added"`) || !strings.Contains(lines[1], `"id":"42"`) {
		t.Errorf("unexpected entry: %s", lines[1])
	}
}

func TestDisabledDiscards(t *testing.T) {
	if err := Init(false, ""); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	L().Debug("ignored")
	if err := Close(); err != nil {
		t.Errorf("Close() without file returned %v", err)
	}
}
