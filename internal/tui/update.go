package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/logging"
	"github.com/ikersanz-debug/MyTracker/internal/pomodoro"
	"github.com/ikersanz-debug/MyTracker/internal/store"
)

// Steps and floors of the in-app length adjustments, in minutes.
const (
	workStep  = 5
	minWork   = 5
	breakStep = 1
	minBreak  = 1
)

// snapshotMsg carries a snapshot published by the store.
type snapshotMsg store.Snapshot

// pomodoroMsg signals that the timer changed. The model reads the timer
// itself so out-of-order deliveries never show a stale state.
type pomodoroMsg struct{}

// errMsg reports a failed background operation.
type errMsg struct{ err error }

// statusMsg is a transient confirmation.
type statusMsg string

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-10, 10), 60)
		return m, nil

	case snapshotMsg:
		m.snap = store.Snapshot(msg)
		return m, nil

	case pomodoroMsg:
		m.pomo = m.timer.State()
		return m, nil

	case errMsg:
		logging.L().Debug("tui_error", "error", msg.err.Error())
		m.setStatus(msg.err.Error(), true)
		return m, nil

	case statusMsg:
		m.setStatus(string(msg), false)
		return m, nil

	case tea.KeyMsg:
		logging.L().Debug("key", "key", msg.String(), "tab", m.tab.String(), "prompted", m.prompted)
		if m.prompted {
			return m.handlePromptKeys(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	m.statusUntil = m.now().Add(statusTTL)
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, k.NextTab):
		m.tab = (m.tab + 1) % 2
		return m, nil
	case key.Matches(msg, k.Calendar):
		m.tab = TabCalendar
		return m, nil
	case key.Matches(msg, k.Pomodoro):
		m.tab = TabPomodoro
		return m, nil
	case key.Matches(msg, k.NewTodo):
		m.prompted = true
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case key.Matches(msg, k.Refresh):
		return m, m.refresh()
	}

	if m.tab == TabPomodoro {
		switch {
		case key.Matches(msg, k.Toggle):
			return m, m.timerCmd(m.timer.Toggle)
		case key.Matches(msg, k.Reset):
			return m, m.timerCmd(m.timer.Reset)
		case key.Matches(msg, k.Longer):
			return m, m.adjustSettings(func(s *pomodoro.Settings) { s.WorkMinutes += workStep })
		case key.Matches(msg, k.Shorter):
			return m, m.adjustSettings(func(s *pomodoro.Settings) { s.WorkMinutes = max(s.WorkMinutes-workStep, minWork) })
		case key.Matches(msg, k.BreakUp):
			return m, m.adjustSettings(func(s *pomodoro.Settings) { s.ShortBreakMinutes += breakStep })
		case key.Matches(msg, k.BreakDn):
			return m, m.adjustSettings(func(s *pomodoro.Settings) { s.ShortBreakMinutes = max(s.ShortBreakMinutes-breakStep, minBreak) })
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Prev):
		m.nav.Prev()
	case key.Matches(msg, k.Next):
		m.nav.Next()
	case key.Matches(msg, k.Today):
		m.nav.Today(m.now())
	case key.Matches(msg, k.Day):
		m.nav.SetView(calendar.ViewDaily)
	case key.Matches(msg, k.Week):
		m.nav.SetView(calendar.ViewWeekly)
	case key.Matches(msg, k.Month):
		m.nav.SetView(calendar.ViewMonthly)
	}
	return m, nil
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompted = false
		m.prompt.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		text := strings.TrimSpace(m.prompt.Value())
		m.prompted = false
		m.prompt.Blur()
		if text == "" {
			return m, nil
		}
		return m, m.addTodo(text)
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// timerCmd runs a timer operation off the update loop. Timer callbacks
// send messages to the program, which must not happen from inside Update.
func (m Model) timerCmd(op func()) tea.Cmd {
	return func() tea.Msg {
		op()
		return pomodoroMsg{}
	}
}

// adjustSettings changes the timer lengths. The timer refuses while it is
// running and the refusal is shown as an error.
func (m Model) adjustSettings(change func(*pomodoro.Settings)) tea.Cmd {
	timer := m.timer
	return func() tea.Msg {
		s := timer.State().Settings
		change(&s)
		if err := timer.SetSettings(s); err != nil {
			return errMsg{err}
		}
		logging.L().Debug("pomodoro_settings", "work", s.WorkMinutes, "short_break", s.ShortBreakMinutes)
		return pomodoroMsg{}
	}
}

// addTodo stores a to-do. The new snapshot arrives through the store
// subscription.
func (m Model) addTodo(text string) tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		td, err := st.AddTodo(ctx, text, "")
		if err != nil {
			return errMsg{err}
		}
		return statusMsg("Added to-do: " + td.Text)
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		if err := st.Refresh(ctx); err != nil {
			return errMsg{err}
		}
		return snapshotMsg(st.Snapshot())
	}
}
