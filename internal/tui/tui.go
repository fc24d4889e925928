package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/logging"
	"github.com/ikersanz-debug/MyTracker/internal/pomodoro"
	"github.com/ikersanz-debug/MyTracker/internal/store"
)

// Options configures Run.
type Options struct {
	Tab      Tab
	View     calendar.View
	Theme    string
	Settings pomodoro.Settings
	Notifier pomodoro.Notifier // nil disables notifications
}

// Run starts the TUI over st and blocks until the user quits. Finished
// Pomodoro work intervals are recorded through st.
func Run(ctx context.Context, st *store.Store, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The program does not exist yet when the timer is built; callbacks
	// only fire after the user starts the timer, by which time it does.
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	timerOpts := []pomodoro.Option{
		pomodoro.WithContext(ctx),
		pomodoro.OnChange(func(pomodoro.State) { send(pomodoroMsg{}) }),
		pomodoro.OnError(func(err error) { send(errMsg{err}) }),
	}
	if opts.Notifier != nil {
		timerOpts = append(timerOpts, pomodoro.WithNotifier(opts.Notifier))
	}
	timer, err := pomodoro.New(st, opts.Settings, timerOpts...)
	if err != nil {
		return fmt.Errorf("creating pomodoro timer: %w", err)
	}
	defer timer.Close()

	modelOpts := []ModelOption{WithTab(opts.Tab), WithTheme(opts.Theme)}
	if opts.View != "" {
		modelOpts = append(modelOpts, WithView(opts.View))
	}
	model := New(ctx, st, timer, modelOpts...)

	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := st.Subscribe(func(snap store.Snapshot) { send(snapshotMsg(snap)) })
	defer unsubscribe()

	logging.L().Debug("tui_start", "tab", opts.Tab.String(), "view", string(opts.View))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
