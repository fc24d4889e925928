package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
	if cfg.Storage.User == "" {
		t.Error("Storage.User should not be empty")
	}
	if cfg.Pomodoro.WorkMinutes != 25 {
		t.Errorf("Pomodoro.WorkMinutes = %d, want 25", cfg.Pomodoro.WorkMinutes)
	}
	if cfg.Pomodoro.ShortBreakMinutes != 5 {
		t.Errorf("Pomodoro.ShortBreakMinutes = %d, want 5", cfg.Pomodoro.ShortBreakMinutes)
	}
	if cfg.Pomodoro.LongBreakMinutes != 15 {
		t.Errorf("Pomodoro.LongBreakMinutes = %d, want 15", cfg.Pomodoro.LongBreakMinutes)
	}
	if cfg.Pomodoro.IntervalsBeforeLongBreak != 4 {
		t.Errorf("Pomodoro.IntervalsBeforeLongBreak = %d, want 4", cfg.Pomodoro.IntervalsBeforeLongBreak)
	}
	if cfg.Calendar.DefaultView != "week" {
		t.Errorf("Calendar.DefaultView = %q, want %q", cfg.Calendar.DefaultView, "week")
	}
	if cfg.UI.Theme != "mocha" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "mocha")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Pomodoro.WorkMinutes != 25 {
		t.Errorf("expected defaults, got WorkMinutes = %d", cfg.Pomodoro.WorkMinutes)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[storage]
driver = "bolt"
db_path = "/tmp/tracker.db"
user = "iker"

[pomodoro]
work_minutes = 50
short_break_minutes = 10

[calendar]
default_view = "month"

[ui]
theme = "latte"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Storage.Driver != DriverBolt {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverBolt)
	}
	if cfg.Storage.DBPath != "/tmp/tracker.db" {
		t.Errorf("Storage.DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.Storage.User != "iker" {
		t.Errorf("Storage.User = %q, want %q", cfg.Storage.User, "iker")
	}
	if cfg.Pomodoro.WorkMinutes != 50 || cfg.Pomodoro.ShortBreakMinutes != 10 {
		t.Errorf("unexpected pomodoro config: %+v", cfg.Pomodoro)
	}
	// Unset keys keep their defaults
	if cfg.Pomodoro.LongBreakMinutes != 15 {
		t.Errorf("Pomodoro.LongBreakMinutes = %d, want 15", cfg.Pomodoro.LongBreakMinutes)
	}
	if cfg.Calendar.DefaultView != "month" {
		t.Errorf("Calendar.DefaultView = %q, want %q", cfg.Calendar.DefaultView, "month")
	}
	if cfg.UI.Theme != "latte" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "latte")
	}
}

func TestLoadFromInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage\ndriver="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MYTRACKER_STORAGE_DRIVER", "bolt")
	t.Setenv("MYTRACKER_USER", "env-user")
	t.Setenv("MYTRACKER_POMODORO_WORK_MINUTES", "40")
	t.Setenv("MYTRACKER_POMODORO_NOTIFY", "false")
	t.Setenv("MYTRACKER_LLM_PROVIDER", "ollama")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Storage.Driver != DriverBolt {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverBolt)
	}
	if cfg.Storage.User != "env-user" {
		t.Errorf("Storage.User = %q, want %q", cfg.Storage.User, "env-user")
	}
	if cfg.Pomodoro.WorkMinutes != 40 {
		t.Errorf("Pomodoro.WorkMinutes = %d, want 40", cfg.Pomodoro.WorkMinutes)
	}
	if cfg.Pomodoro.Notify {
		t.Error("Pomodoro.Notify should be false")
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, "ollama")
	}
}

func TestEnvOverridesInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric minutes", "MYTRACKER_POMODORO_WORK_MINUTES", "lots"},
		{"non boolean notify", "MYTRACKER_POMODORO_NOTIFY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			getenv := func(key string) string {
				if key == tt.key {
					return tt.value
				}
				return ""
			}
			err := applyEnvOverrides(cfg, getenv)
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("applyEnvOverrides() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := "MYTRACKER_UI_THEME=frappe\nMYTRACKER_CALENDAR_VIEW=day\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}
	// Real environment wins over the .env file.
	t.Setenv("MYTRACKER_CALENDAR_VIEW", "month")

	cfg, err := LoadFrom(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.UI.Theme != "frappe" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "frappe")
	}
	if cfg.Calendar.DefaultView != "month" {
		t.Errorf("Calendar.DefaultView = %q, want %q", cfg.Calendar.DefaultView, "month")
	}
	if _, set := os.LookupEnv("MYTRACKER_UI_THEME"); set {
		t.Error(".env values should not leak into the process environment")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"bolt driver", func(c *Config) { c.Storage.Driver = DriverBolt }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, true},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"blank user", func(c *Config) { c.Storage.User = "  " }, true},
		{"zero work minutes", func(c *Config) { c.Pomodoro.WorkMinutes = 0 }, true},
		{"negative break", func(c *Config) { c.Pomodoro.ShortBreakMinutes = -5 }, true},
		{"zero intervals", func(c *Config) { c.Pomodoro.IntervalsBeforeLongBreak = 0 }, true},
		{"uppercase view", func(c *Config) { c.Calendar.DefaultView = "Month" }, false},
		{"unknown view", func(c *Config) { c.Calendar.DefaultView = "year" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/data/tracker.db", filepath.Join(home, "data", "tracker.db")},
		{"/abs/tracker.db", "/abs/tracker.db"},
		{"relative.db", "relative.db"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Storage.DBPath = "/tmp/saved.db"
	cfg.Pomodoro.WorkMinutes = 45
	cfg.UI.Theme = "macchiato"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Pomodoro.WorkMinutes != 45 {
		t.Errorf("Pomodoro.WorkMinutes = %d, want 45", loaded.Pomodoro.WorkMinutes)
	}
	if loaded.UI.Theme != "macchiato" {
		t.Errorf("UI.Theme = %q, want %q", loaded.UI.Theme, "macchiato")
	}
	if loaded.Storage.DBPath != "/tmp/saved.db" {
		t.Errorf("Storage.DBPath = %q", loaded.Storage.DBPath)
	}
}
