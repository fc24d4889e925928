// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MYTRACKER_"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Pomodoro PomodoroConfig `toml:"pomodoro"`
	Calendar CalendarConfig `toml:"calendar"`
	LLM      LLMConfig      `toml:"llm"`
	UI       UIConfig       `toml:"ui"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver string `toml:"driver"`  // "sqlite" or "bolt"
	DBPath string `toml:"db_path"` // file used by either driver
	User   string `toml:"user"`    // data is scoped to this user
}

// PomodoroConfig holds the timer lengths in minutes.
type PomodoroConfig struct {
	WorkMinutes              int  `toml:"work_minutes"`
	ShortBreakMinutes        int  `toml:"short_break_minutes"`
	LongBreakMinutes         int  `toml:"long_break_minutes"`
	IntervalsBeforeLongBreak int  `toml:"intervals_before_long_break"`
	Notify                   bool `toml:"notify"` // desktop notification when a phase ends
}

// CalendarConfig holds calendar view settings.
type CalendarConfig struct {
	DefaultView string `toml:"default_view"` // "day", "week", "month"
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DBPath: defaultDBPath(),
			User:   defaultUser(),
		},
		Pomodoro: PomodoroConfig{
			WorkMinutes:              25,
			ShortBreakMinutes:        5,
			LongBreakMinutes:         15,
			IntervalsBeforeLongBreak: 4,
			Notify:                   true,
		},
		Calendar: CalendarConfig{
			DefaultView: "week",
		},
		LLM: LLMConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
			BaseURL:  "http://localhost:11434",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mytracker.db"
	}
	return filepath.Join(home, ".local", "share", "mytracker", "mytracker.db")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "mytracker", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies
// env overrides. A .env file next to the config file supplies overrides
// that real environment variables take precedence over.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg, lookupWith(dotenv)); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// lookupWith returns a lookup that prefers the process environment and
// falls back to the .env values.
func lookupWith(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s must be a number, got %q", EnvPrefix, name, v)
		}
		*dst = n
		return nil
	}

	// Storage overrides
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DB_PATH", &cfg.Storage.DBPath)
	str("USER", &cfg.Storage.User)

	// Pomodoro overrides
	for name, dst := range map[string]*int{
		"POMODORO_WORK_MINUTES":        &cfg.Pomodoro.WorkMinutes,
		"POMODORO_SHORT_BREAK_MINUTES": &cfg.Pomodoro.ShortBreakMinutes,
		"POMODORO_LONG_BREAK_MINUTES":  &cfg.Pomodoro.LongBreakMinutes,
		"POMODORO_INTERVALS":           &cfg.Pomodoro.IntervalsBeforeLongBreak,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	if v := getenv(EnvPrefix + "POMODORO_NOTIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPOMODORO_NOTIFY must be true or false, got %q", EnvPrefix, v)
		}
		cfg.Pomodoro.Notify = b
	}

	str("CALENDAR_VIEW", &cfg.Calendar.DefaultView)

	// LLM overrides
	str("LLM_PROVIDER", &cfg.LLM.Provider)
	str("LLM_MODEL", &cfg.LLM.Model)
	str("LLM_BASE_URL", &cfg.LLM.BaseURL)

	// UI overrides
	str("UI_THEME", &cfg.UI.Theme)
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverBolt:
	default:
		return fmt.Errorf("storage driver must be %q or %q, got %q", DriverSQLite, DriverBolt, c.Storage.Driver)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if strings.TrimSpace(c.Storage.User) == "" {
		return errors.New("user must be set")
	}

	p := c.Pomodoro
	if p.WorkMinutes <= 0 || p.ShortBreakMinutes <= 0 || p.LongBreakMinutes <= 0 {
		return errors.New("pomodoro lengths must be positive")
	}
	if p.IntervalsBeforeLongBreak <= 0 {
		return errors.New("intervals_before_long_break must be positive")
	}

	switch strings.ToLower(c.Calendar.DefaultView) {
	case "day", "week", "month":
	default:
		return fmt.Errorf("default_view must be day, week or month, got %q", c.Calendar.DefaultView)
	}
	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
