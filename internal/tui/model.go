// Package tui provides the terminal user interface for MyTracker: a
// calendar of sessions and important dates, and a Pomodoro timer.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/pomodoro"
	"github.com/ikersanz-debug/MyTracker/internal/store"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
	"github.com/ikersanz-debug/MyTracker/internal/tui/theme"
)

// Tab is the screen on display.
type Tab int

const (
	TabCalendar Tab = iota
	TabPomodoro
)

func (t Tab) String() string {
	if t == TabPomodoro {
		return "Pomodoro"
	}
	return "Calendar"
}

// statusTTL is how long a status line stays up.
const statusTTL = 4 * time.Second

// Model is the main TUI model.
type Model struct {
	// Dependencies
	ctx    context.Context
	store  *store.Store
	timer  *pomodoro.Timer
	merger *timeline.Merger
	now    func() time.Time

	styles   *Styles
	keys     keyMap
	help     help.Model
	bar      progress.Model
	prompt   textinput.Model
	prompted bool

	// State
	tab  Tab
	nav  *calendar.Navigator
	snap store.Snapshot
	pomo pomodoro.State

	status      string
	statusErr   bool
	statusUntil time.Time

	width  int
	height int
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithTab selects the tab shown first.
func WithTab(tab Tab) ModelOption {
	return func(m *Model) { m.tab = tab }
}

// WithView selects the initial calendar view.
func WithView(v calendar.View) ModelOption {
	return func(m *Model) { m.nav.SetView(v) }
}

// WithTheme selects the color theme by name.
func WithTheme(name string) ModelOption {
	return func(m *Model) {
		t, err := theme.Load(name)
		if err != nil {
			return
		}
		m.applyStyles(NewStyles(t))
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
		m.nav.Today(now())
	}
}

// New creates a new TUI model over st. timer drives the Pomodoro tab and
// records finished work intervals through st.
func New(ctx context.Context, st *store.Store, timer *pomodoro.Timer, opts ...ModelOption) Model {
	prompt := textinput.New()
	prompt.Placeholder = "Repasar tema 4"
	prompt.Prompt = "New to-do: "
	prompt.CharLimit = 200

	m := Model{
		ctx:    ctx,
		store:  st,
		timer:  timer,
		merger: &timeline.Merger{},
		now:    time.Now,
		keys:   newKeyMap(),
		help:   help.New(),
		prompt: prompt,
		nav:    calendar.NewNavigator(calendar.ViewWeekly, time.Now()),
		snap:   st.Snapshot(),
		pomo:   timer.State(),
	}
	t, _ := theme.Load(theme.DefaultName)
	m.applyStyles(NewStyles(t))

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m *Model) applyStyles(s *Styles) {
	m.styles = s
	m.bar = progress.New(
		progress.WithGradient(string(s.Palette().Study), string(s.Palette().Accent)),
		progress.WithoutPercentage(),
	)
	m.bar.Width = 40
	m.prompt.PromptStyle = s.PanelTitleStyle
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Tab returns the tab on display.
func (m Model) Tab() Tab { return m.tab }

// Navigator returns the calendar position.
func (m Model) Navigator() calendar.Navigator { return *m.nav }

// activities returns the merged timeline of the current snapshot.
func (m Model) activities() []timeline.Activity {
	return m.merger.Activities(m.snap.Subjects, m.snap.SubjectsVersion, m.snap.Sessions, m.snap.SessionsVersion)
}

// grid builds the calendar for the current position.
func (m Model) grid() calendar.Grid {
	return m.nav.Grid(m.activities(), m.now())
}
