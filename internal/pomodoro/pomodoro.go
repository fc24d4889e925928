// Package pomodoro implements the work/break countdown and records a study
// session every time a work interval finishes.
package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Errors.
var (
	ErrRunning         = errors.New("settings cannot change while the timer is running")
	ErrInvalidSettings = errors.New("pomodoro lengths and intervals must be positive")
)

// Phase is the interval the timer is counting down.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

func (p Phase) String() string {
	switch p {
	case PhaseShortBreak:
		return "Short break"
	case PhaseLongBreak:
		return "Long break"
	default:
		return "Work"
	}
}

// IsBreak reports whether p is one of the break phases.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// Settings are the user-adjustable lengths, in minutes.
type Settings struct {
	WorkMinutes              int
	ShortBreakMinutes        int
	LongBreakMinutes         int
	IntervalsBeforeLongBreak int
}

// DefaultSettings returns the classic 25/5/15 cycle with a long break every
// fourth interval.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:              25,
		ShortBreakMinutes:        5,
		LongBreakMinutes:         15,
		IntervalsBeforeLongBreak: 4,
	}
}

// Validate checks that every value is positive.
func (s Settings) Validate() error {
	if s.WorkMinutes <= 0 || s.ShortBreakMinutes <= 0 || s.LongBreakMinutes <= 0 || s.IntervalsBeforeLongBreak <= 0 {
		return ErrInvalidSettings
	}
	return nil
}

// Length returns how long the given phase lasts.
func (s Settings) Length(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return time.Duration(s.ShortBreakMinutes) * time.Minute
	case PhaseLongBreak:
		return time.Duration(s.LongBreakMinutes) * time.Minute
	default:
		return time.Duration(s.WorkMinutes) * time.Minute
	}
}

// Recorder persists a finished work interval.
type Recorder interface {
	RecordPomodoro(ctx context.Context, minutes int, at time.Time) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, minutes int, at time.Time) error

// RecordPomodoro calls f.
func (f RecorderFunc) RecordPomodoro(ctx context.Context, minutes int, at time.Time) error {
	return f(ctx, minutes, at)
}

// Notifier is told when a phase ends.
type Notifier interface {
	Notify(title, message string) error
}

// Ticker delivers the one-second beat of a running timer.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// State is a snapshot of the timer for display.
type State struct {
	Phase     Phase
	Running   bool
	Remaining time.Duration
	Completed int
	Settings  Settings
	Message   string
}

// Clock renders the remaining time as mm:ss.
func (s State) Clock() string {
	secs := int(s.Remaining / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Progress returns the elapsed fraction of the current phase, 0 to 1.
func (s State) Progress() float64 {
	total := s.Settings.Length(s.Phase)
	if total <= 0 {
		return 0
	}
	return 1 - float64(s.Remaining)/float64(total)
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces time.Now for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// WithTicker replaces the ticker started by Start.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(t *Timer) { t.newTicker = newTicker }
}

// WithNotifier sends a notification whenever a phase finishes.
func WithNotifier(n Notifier) Option {
	return func(t *Timer) { t.notifier = n }
}

// WithContext sets the context passed to the recorder.
func WithContext(ctx context.Context) Option {
	return func(t *Timer) { t.ctx = ctx }
}

// OnChange registers a callback invoked after every state change.
func OnChange(fn func(State)) Option {
	return func(t *Timer) { t.onChange = fn }
}

// OnError registers a callback invoked when recording or notifying fails.
func OnError(fn func(error)) Option {
	return func(t *Timer) { t.onError = fn }
}

// Timer is the Pomodoro state machine. It owns the ticker goroutine that
// drives it while running.
type Timer struct {
	mu        sync.Mutex
	settings  Settings
	phase     Phase
	running   bool
	remaining time.Duration
	completed int
	message   string

	recorder  Recorder
	notifier  Notifier
	ctx       context.Context
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	onChange  func(State)
	onError   func(error)

	stop chan struct{}
}

// New creates a stopped timer at the start of a work interval.
func New(rec Recorder, settings Settings, opts ...Option) (*Timer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	t := &Timer{
		settings:  settings,
		phase:     PhaseWork,
		remaining: settings.Length(PhaseWork),
		recorder:  rec,
		ctx:       context.Background(),
		now:       time.Now,
		newTicker: newRealTicker,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// State returns the current snapshot.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Timer) stateLocked() State {
	return State{
		Phase:     t.phase,
		Running:   t.running,
		Remaining: t.remaining,
		Completed: t.completed,
		Settings:  t.settings,
		Message:   t.message,
	}
}

// Start resumes the countdown. Starting a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.message = ""
	t.startTickerLocked()
	st := t.stateLocked()
	t.mu.Unlock()
	t.changed(st)
}

// Pause stops the countdown without touching the remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.stopTickerLocked()
	st := t.stateLocked()
	t.mu.Unlock()
	t.changed(st)
}

// Toggle starts a stopped timer and pauses a running one.
func (t *Timer) Toggle() {
	if t.State().Running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset returns to a stopped, full-length work interval and clears the
// completed count.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.running = false
	t.stopTickerLocked()
	t.phase = PhaseWork
	t.remaining = t.settings.Length(PhaseWork)
	t.completed = 0
	t.message = ""
	st := t.stateLocked()
	t.mu.Unlock()
	t.changed(st)
}

// SetSettings replaces the lengths. The countdown restarts at the full
// length of the current phase.
func (t *Timer) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrRunning
	}
	t.settings = s
	t.remaining = s.Length(t.phase)
	st := t.stateLocked()
	t.mu.Unlock()
	t.changed(st)
	return nil
}

// Close stops the ticker goroutine. The timer can be started again.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.stopTickerLocked()
}

// Tick advances a running timer by one second. Ticks on a stopped timer
// are ignored.
func (t *Timer) Tick() { t.tick(nil) }

// tick drops ticks sent by a run other than the one owning run. A nil run
// accepts any tick.
func (t *Timer) tick(run chan struct{}) {
	t.mu.Lock()
	if !t.running || (run != nil && run != t.stop) {
		t.mu.Unlock()
		return
	}
	t.remaining -= time.Second
	if t.remaining > 0 {
		st := t.stateLocked()
		t.mu.Unlock()
		t.changed(st)
		return
	}

	finished := t.phase
	workMinutes := t.settings.WorkMinutes
	if finished == PhaseWork {
		t.completed++
		if t.completed%t.settings.IntervalsBeforeLongBreak == 0 {
			t.phase = PhaseLongBreak
		} else {
			t.phase = PhaseShortBreak
		}
	} else {
		t.phase = PhaseWork
	}
	t.remaining = t.settings.Length(t.phase)
	t.message = ""
	next := t.phase
	t.mu.Unlock()

	var errs []error
	if finished == PhaseWork && t.recorder != nil {
		if err := t.recorder.RecordPomodoro(t.ctx, workMinutes, t.now()); err != nil {
			err = fmt.Errorf("recording pomodoro: %w", err)
			errs = append(errs, err)
			t.mu.Lock()
			t.message = err.Error()
			t.mu.Unlock()
		}
	}
	if t.notifier != nil {
		if err := t.notifier.Notify(finished.String()+" finished", next.String()+" starts now"); err != nil {
			errs = append(errs, fmt.Errorf("sending notification: %w", err))
		}
	}

	for _, err := range errs {
		if t.onError != nil {
			t.onError(err)
		}
	}
	t.changed(t.State())
}

func (t *Timer) changed(st State) {
	if t.onChange != nil {
		t.onChange(st)
	}
}

func (t *Timer) startTickerLocked() {
	stop := make(chan struct{})
	t.stop = stop
	ticker := t.newTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				t.tick(stop)
			}
		}
	}()
}

func (t *Timer) stopTickerLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
