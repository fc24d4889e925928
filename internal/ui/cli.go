// Package ui implements the mytracker command line.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/config"
	"github.com/ikersanz-debug/MyTracker/internal/db"
	"github.com/ikersanz-debug/MyTracker/internal/docstore"
	"github.com/ikersanz-debug/MyTracker/internal/logging"
	"github.com/ikersanz-debug/MyTracker/internal/notify"
	"github.com/ikersanz-debug/MyTracker/internal/pomodoro"
	"github.com/ikersanz-debug/MyTracker/internal/store"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config  *config.Config
	root    *cobra.Command
	store   *store.Store // opened on first use
	in      io.Reader    // answers for interactive prompts
	debug   bool
	noColor bool
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, in: os.Stdin}

	a.root = &cobra.Command{
		Use:   "mytracker",
		Short: "Track study sessions, exams and Pomodoros",
		Long: `MyTracker is an academic planner for the terminal.

It records study sessions per subject, keeps exam and deadline dates,
shows them on a calendar and runs a Pomodoro timer that logs the time
you focus.

Run without arguments to open the interactive calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return logging.Init(a.debug, "")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context(), tui.TabCalendar)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+logging.DebugLogPath+")")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.subjectCmd())
	a.root.AddCommand(a.sessionCmd())
	a.root.AddCommand(a.todoCmd())
	a.root.AddCommand(a.calendarCmd())
	a.root.AddCommand(a.statsCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.pomodoroCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mytracker %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) pomodoroCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pomodoro",
		Short: "Open the Pomodoro timer",
		Long: `Open the interactive Pomodoro timer.

Every finished work interval is saved as a pomodoro session.
Interval lengths come from the [pomodoro] section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context(), tui.TabPomodoro)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the store and the debug log.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if lerr := logging.Close(); err == nil {
		err = lerr
	}
	return err
}

// openStore opens the configured repository the first time it is needed.
func (a *App) openStore(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	repo, err := openRepository(a.config.Storage)
	if err != nil {
		return nil, err
	}
	st, err := store.New(ctx, repo)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	logging.L().Debug("store_open", "driver", a.config.Storage.Driver, "path", a.config.Storage.DBPath, "user", a.config.Storage.User)
	a.store = st
	return st, nil
}

func openRepository(cfg config.StorageConfig) (study.Repository, error) {
	switch cfg.Driver {
	case config.DriverBolt:
		return docstore.Open(cfg.DBPath, cfg.User)
	case config.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return db.New(cfg.DBPath, cfg.User)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (a *App) pomodoroSettings() pomodoro.Settings {
	p := a.config.Pomodoro
	return pomodoro.Settings{
		WorkMinutes:              p.WorkMinutes,
		ShortBreakMinutes:        p.ShortBreakMinutes,
		LongBreakMinutes:         p.LongBreakMinutes,
		IntervalsBeforeLongBreak: p.IntervalsBeforeLongBreak,
	}
}

func (a *App) runTUI(ctx context.Context, tab tui.Tab) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	view, err := calendar.ParseView(a.config.Calendar.DefaultView)
	if err != nil {
		view = calendar.ViewWeekly
	}
	opts := tui.Options{
		Tab:      tab,
		View:     view,
		Theme:    a.config.UI.Theme,
		Settings: a.pomodoroSettings(),
	}
	if a.config.Pomodoro.Notify {
		opts.Notifier = notify.NewDesktop(true)
	}
	return tui.Run(ctx, st, opts)
}
