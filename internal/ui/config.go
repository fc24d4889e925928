package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/config"
	"github.com/ikersanz-debug/MyTracker/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.
Environment variables prefixed with ` + config.EnvPrefix + ` override the file.`,
		Example: `  mytracker config`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.OutOrStdout(), bufio.NewReader(a.in), path)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Config file (default "+config.DefaultConfigPath()+")")
	return cmd
}

func runConfigInteractive(w io.Writer, reader *bufio.Reader, path string) error {
	fmt.Fprintf(w, "Config file: %s\n\n", path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Created %s\n\n", path)
	}

	printConfig(w, cfg)

	if !promptYesNo(w, reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := &prompter{w: w, r: reader}
	cfg.Storage.Driver = p.choice("Storage driver", cfg.Storage.Driver, []string{config.DriverSQLite, config.DriverBolt})
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Storage.User = p.value("User", cfg.Storage.User)
	cfg.Pomodoro.WorkMinutes = p.minutes("Work minutes", cfg.Pomodoro.WorkMinutes)
	cfg.Pomodoro.ShortBreakMinutes = p.minutes("Short break minutes", cfg.Pomodoro.ShortBreakMinutes)
	cfg.Pomodoro.LongBreakMinutes = p.minutes("Long break minutes", cfg.Pomodoro.LongBreakMinutes)
	cfg.Pomodoro.IntervalsBeforeLongBreak = p.minutes("Intervals before a long break", cfg.Pomodoro.IntervalsBeforeLongBreak)
	cfg.Pomodoro.Notify = p.value("Desktop notifications (true/false)", strconv.FormatBool(cfg.Pomodoro.Notify)) == "true"
	cfg.Calendar.DefaultView = p.choice("Default calendar view", cfg.Calendar.DefaultView,
		[]string{string(calendar.ViewDaily), string(calendar.ViewWeekly), string(calendar.ViewMonthly)})
	cfg.LLM.Provider = p.value("LLM provider (copilot, ollama, lmstudio)", cfg.LLM.Provider)
	cfg.LLM.Model = p.value("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.value("LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.UI.Theme = p.choice("UI theme", cfg.UI.Theme, theme.Available())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[storage]")
	fmt.Fprintf(w, "  driver                      = %s\n", cfg.Storage.Driver)
	fmt.Fprintf(w, "  db_path                     = %s\n", cfg.Storage.DBPath)
	fmt.Fprintf(w, "  user                        = %s\n", cfg.Storage.User)
	fmt.Fprintln(w, "\n[pomodoro]")
	fmt.Fprintf(w, "  work_minutes                = %d\n", cfg.Pomodoro.WorkMinutes)
	fmt.Fprintf(w, "  short_break_minutes         = %d\n", cfg.Pomodoro.ShortBreakMinutes)
	fmt.Fprintf(w, "  long_break_minutes          = %d\n", cfg.Pomodoro.LongBreakMinutes)
	fmt.Fprintf(w, "  intervals_before_long_break = %d\n", cfg.Pomodoro.IntervalsBeforeLongBreak)
	fmt.Fprintf(w, "  notify                      = %t\n", cfg.Pomodoro.Notify)
	fmt.Fprintln(w, "\n[calendar]")
	fmt.Fprintf(w, "  default_view                = %s\n", cfg.Calendar.DefaultView)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider                    = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model                       = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url                    = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme                       = %s\n", cfg.UI.Theme)
}

func promptYesNo(w io.Writer, reader *bufio.Reader, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// prompter asks for values one line at a time. An empty answer keeps the
// current value, as does end of input.
type prompter struct {
	w   io.Writer
	r   *bufio.Reader
	eof bool
}

func (p *prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	input, err := p.r.ReadString('\n')
	if err != nil {
		p.eof = true
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p *prompter) minutes(label string, current int) int {
	for {
		value := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		if p.eof {
			return current
		}
		fmt.Fprintf(p.w, "  Invalid number %q.\n", value)
	}
}

func (p *prompter) choice(label, current string, options []string) string {
	joined := strings.Join(options, ", ")
	label = fmt.Sprintf("%s (%s)", label, joined)
	for {
		value := strings.ToLower(p.value(label, current))
		for _, o := range options {
			if value == o {
				return value
			}
		}
		if p.eof {
			return current
		}
		fmt.Fprintf(p.w, "  Invalid value %q. Available: %s\n", value, joined)
	}
}
