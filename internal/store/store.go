// Package store holds the current state of the planner and is the single
// entry point for changing it. Every change goes to the repository first;
// the affected collection is then reloaded and a fresh snapshot is pushed to
// subscribers. Snapshots are never modified after publication.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/logging"
	"github.com/ikersanz-debug/MyTracker/internal/stats"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

// ErrCascadeIncomplete is returned when a subject was deleted but some of
// its sessions could not be. Sessions already deleted stay deleted.
var ErrCascadeIncomplete = errors.New("subject deleted but some of its sessions could not be removed")

// Snapshot is an immutable view of all collections. Callers must not modify
// the slices or the values they point to.
type Snapshot struct {
	Subjects []*study.Subject
	Sessions []*study.Session
	Todos    []*study.Todo

	SubjectsVersion uint64
	SessionsVersion uint64
	TodosVersion    uint64
}

// Subject returns the subject with the given ID.
func (s Snapshot) Subject(id string) (*study.Subject, bool) {
	for _, subj := range s.Subjects {
		if subj.ID == id {
			return subj, true
		}
	}
	return nil, false
}

// Session returns the session with the given ID.
func (s Snapshot) Session(id string) (*study.Session, bool) {
	for _, sess := range s.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return nil, false
}

// Todo returns the to-do with the given ID.
func (s Snapshot) Todo(id string) (*study.Todo, bool) {
	for _, td := range s.Todos {
		if td.ID == id {
			return td, true
		}
	}
	return nil, false
}

// SubjectIDs returns the IDs of every subject in order.
func (s Snapshot) SubjectIDs() []string {
	ids := make([]string, len(s.Subjects))
	for i, subj := range s.Subjects {
		ids[i] = subj.ID
	}
	return ids
}

// Store is the observable state container.
type Store struct {
	repo   study.Repository
	log    *slog.Logger
	merger timeline.Merger

	// writeMu serializes mutations so reloads publish in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a store over repo and loads the initial snapshot.
func New(ctx context.Context, repo study.Repository) (*Store, error) {
	s := &Store{
		repo: repo,
		log:  logging.L(),
		subs: make(map[int]func(Snapshot)),
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to receive every new snapshot and returns a
// function that removes it. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Refresh reloads every collection from the repository.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.reload(ctx, true, true, true)
}

type collections struct {
	subjects []*study.Subject
	sessions []*study.Session
	todos    []*study.Todo
}

// reload fetches the requested collections and publishes a new snapshot.
// Must be called with writeMu held.
func (s *Store) reload(ctx context.Context, subjects, sessions, todos bool) error {
	var c collections
	var err error
	if subjects {
		if c.subjects, err = s.repo.ListSubjects(ctx); err != nil {
			return fmt.Errorf("loading subjects: %w", err)
		}
	}
	if sessions {
		if c.sessions, err = s.repo.ListSessions(ctx); err != nil {
			return fmt.Errorf("loading sessions: %w", err)
		}
	}
	if todos {
		if c.todos, err = s.repo.ListTodos(ctx); err != nil {
			return fmt.Errorf("loading todos: %w", err)
		}
	}

	s.mu.Lock()
	next := s.snap
	if subjects {
		next.Subjects = c.subjects
		next.SubjectsVersion++
	}
	if sessions {
		next.Sessions = c.sessions
		next.SessionsVersion++
	}
	if todos {
		next.Todos = c.todos
		next.TodosVersion++
	}
	s.snap = next
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// AddStudySession validates and stores a new session.
func (s *Store) AddStudySession(ctx context.Context, in study.SessionInput) (*study.Session, error) {
	sess, err := study.NewSession(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubject(sess.SubjectID); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("adding session: %w", err)
	}
	s.log.Debug("session_added", "id", sess.ID, "subject", sess.SubjectID, "minutes", sess.Duration)
	return sess, s.reload(ctx, false, true, false)
}

// UpdateStudySession replaces the fields of an existing session.
func (s *Store) UpdateStudySession(ctx context.Context, id string, in study.SessionInput) error {
	current, ok := s.Snapshot().Session(id)
	if !ok {
		return fmt.Errorf("session %s: %w", id, study.ErrNotFound)
	}
	updated := *current
	if err := updated.Apply(in); err != nil {
		return err
	}
	if err := s.checkSubject(updated.SubjectID); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.UpdateSession(ctx, &updated); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	s.log.Debug("session_updated", "id", id, "minutes", updated.Duration)
	return s.reload(ctx, false, true, false)
}

// DeleteStudySession removes a session.
func (s *Store) DeleteStudySession(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.log.Debug("session_deleted", "id", id)
	return s.reload(ctx, false, true, false)
}

// RecordPomodoro stores a finished Pomodoro work interval as a session
// with no subject.
func (s *Store) RecordPomodoro(ctx context.Context, minutes int, at time.Time) error {
	sess := study.NewPomodoroSession(minutes, at)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("recording pomodoro: %w", err)
	}
	s.log.Debug("pomodoro_recorded", "id", sess.ID, "minutes", minutes)
	return s.reload(ctx, false, true, false)
}

func (s *Store) checkSubject(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.Snapshot().Subject(id); !ok {
		return fmt.Errorf("subject %s: %w", id, study.ErrNotFound)
	}
	return nil
}

// AddSubject validates and stores a new subject.
func (s *Store) AddSubject(ctx context.Context, in study.SubjectInput) (*study.Subject, error) {
	subj, err := study.NewSubject(in)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.CreateSubject(ctx, subj); err != nil {
		return nil, fmt.Errorf("adding subject: %w", err)
	}
	s.log.Debug("subject_added", "id", subj.ID, "name", subj.Name)
	return subj, s.reload(ctx, true, false, false)
}

// UpdateSubject replaces the editable fields of a subject.
func (s *Store) UpdateSubject(ctx context.Context, id string, in study.SubjectInput) error {
	return s.modifySubject(ctx, id, func(subj *study.Subject) error {
		return subj.Apply(in)
	})
}

// AddImportantDate appends a dated event to a subject.
func (s *Store) AddImportantDate(ctx context.Context, subjectID, typ, date, description string) (study.ImportantDate, error) {
	d, err := study.NewImportantDate(typ, date, description)
	if err != nil {
		return study.ImportantDate{}, err
	}
	err = s.modifySubject(ctx, subjectID, func(subj *study.Subject) error {
		subj.ImportantDates = append(subj.ImportantDates, d)
		return nil
	})
	if err != nil {
		return study.ImportantDate{}, err
	}
	return d, nil
}

// RemoveImportantDate deletes the dated event with the given key.
func (s *Store) RemoveImportantDate(ctx context.Context, subjectID, key string) error {
	return s.modifySubject(ctx, subjectID, func(subj *study.Subject) error {
		if !subj.RemoveDate(key) {
			return fmt.Errorf("important date %s: %w", key, study.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) modifySubject(ctx context.Context, id string, change func(*study.Subject) error) error {
	current, ok := s.Snapshot().Subject(id)
	if !ok {
		return fmt.Errorf("subject %s: %w", id, study.ErrNotFound)
	}
	updated := current.Clone()
	if err := change(&updated); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.UpdateSubject(ctx, &updated); err != nil {
		return fmt.Errorf("updating subject: %w", err)
	}
	s.log.Debug("subject_updated", "id", id, "dates", len(updated.ImportantDates))
	return s.reload(ctx, true, false, false)
}

// DeleteSubject removes a subject and every session recorded for it. When
// the repository can do both atomically it does; otherwise sessions are
// deleted one by one first and any failures are reported together as
// ErrCascadeIncomplete after the subject itself is gone.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if cd, ok := s.repo.(study.CascadeDeleter); ok {
		n, err := cd.DeleteSubjectCascade(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting subject: %w", err)
		}
		s.log.Debug("subject_deleted", "id", id, "sessions", n, "atomic", true)
		return s.reload(ctx, true, true, false)
	}

	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	var failures []error
	for _, sess := range sessions {
		if sess.SubjectID != id {
			continue
		}
		if err := s.repo.DeleteSession(ctx, sess.ID); err != nil {
			failures = append(failures, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}

	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		// Some sessions may already be gone; publish that before failing.
		_ = s.reload(ctx, false, true, false)
		return fmt.Errorf("deleting subject: %w", err)
	}
	s.log.Debug("subject_deleted", "id", id, "failed_sessions", len(failures), "atomic", false)

	reloadErr := s.reload(ctx, true, true, false)
	if len(failures) > 0 {
		s.log.Debug("cascade_incomplete", "id", id, "error", errors.Join(failures...).Error())
		return fmt.Errorf("%w: %w", ErrCascadeIncomplete, errors.Join(failures...))
	}
	return reloadErr
}

// AddTodo validates and stores a new to-do.
func (s *Store) AddTodo(ctx context.Context, text, dueDate string) (*study.Todo, error) {
	td, err := study.NewTodo(text, dueDate)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.CreateTodo(ctx, td); err != nil {
		return nil, fmt.Errorf("adding todo: %w", err)
	}
	return td, s.reload(ctx, false, false, true)
}

// ToggleTodo flips the done flag of a to-do.
func (s *Store) ToggleTodo(ctx context.Context, id string) error {
	current, ok := s.Snapshot().Todo(id)
	if !ok {
		return fmt.Errorf("todo %s: %w", id, study.ErrNotFound)
	}
	updated := *current
	updated.Done = !updated.Done

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.UpdateTodo(ctx, &updated); err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	return s.reload(ctx, false, false, true)
}

// DeleteTodo removes a to-do.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return s.reload(ctx, false, false, true)
}

// Timeline returns the merged activities of the current snapshot.
func (s *Store) Timeline() []timeline.Activity {
	snap := s.Snapshot()
	return s.merger.Activities(snap.Subjects, snap.SubjectsVersion, snap.Sessions, snap.SessionsVersion)
}

// Calendar builds the grid of view around ref.
func (s *Store) Calendar(ref time.Time, view calendar.View, now time.Time) calendar.Grid {
	return calendar.Build(ref, view, s.Timeline(), now)
}

// SubjectTotals returns per-subject study time, largest first.
func (s *Store) SubjectTotals() []stats.SubjectTotal {
	snap := s.Snapshot()
	return stats.SubjectTotals(snap.Subjects, snap.Sessions)
}

// Cumulative builds the cumulative series. AllSubjectIDs defaults to the
// current subjects.
func (s *Store) Cumulative(opts stats.CumulativeOptions) (stats.Series, error) {
	snap := s.Snapshot()
	if len(opts.AllSubjectIDs) == 0 {
		opts.AllSubjectIDs = snap.SubjectIDs()
	}
	for _, id := range opts.SubjectIDs {
		if !slices.Contains(opts.AllSubjectIDs, id) {
			return stats.Series{}, fmt.Errorf("subject %s: %w", id, study.ErrNotFound)
		}
	}
	return stats.Cumulative(snap.Sessions, opts)
}

// Close releases the repository.
func (s *Store) Close() error {
	return s.repo.Close()
}
