// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// DefaultUser scopes data when no user is configured.
const DefaultUser = "default"

// SQLite implements study.Repository using SQLite. All rows belong to the
// user given to New.
type SQLite struct {
	db   *sql.DB
	user string
}

var (
	_ study.Repository     = (*SQLite)(nil)
	_ study.CascadeDeleter = (*SQLite)(nil)
)

// New creates a new SQLite repository and runs migrations.
func New(path, user string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if user == "" {
		user = DefaultUser
	}
	s := &SQLite{db: db, user: user}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListSubjects returns the user's subjects with their important dates.
func (s *SQLite) ListSubjects(ctx context.Context) ([]*study.Subject, error) {
	query := `
		SELECT id, name, professor, color, created_at
		FROM subjects
		WHERE user_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, s.user)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []*study.Subject
	byID := make(map[int64]*study.Subject)
	for rows.Next() {
		subj, id, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subj)
		byID[id] = subj
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}

	dates, err := s.db.QueryContext(ctx, `
		SELECT d.subject_id, d.id, d.type, d.date, d.description
		FROM important_dates d
		JOIN subjects s ON s.id = d.subject_id
		WHERE s.user_id = ?
		ORDER BY d.subject_id, d.position
	`, s.user)
	if err != nil {
		return nil, fmt.Errorf("querying important dates: %w", err)
	}
	defer func() { _ = dates.Close() }()

	for dates.Next() {
		var (
			subjectID int64
			d         study.ImportantDate
			date      string
		)
		if err := dates.Scan(&subjectID, &d.ID, &d.Type, &date, &d.Description); err != nil {
			return nil, fmt.Errorf("scanning important date: %w", err)
		}
		d.Date = formatStoredDate(date)
		if subj, ok := byID[subjectID]; ok {
			subj.ImportantDates = append(subj.ImportantDates, d)
		}
	}
	if err := dates.Err(); err != nil {
		return nil, fmt.Errorf("iterating important dates: %w", err)
	}

	return subjects, nil
}

// GetSubject retrieves a subject by ID.
func (s *SQLite) GetSubject(ctx context.Context, id string) (*study.Subject, error) {
	subjects, err := s.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, subj := range subjects {
		if subj.ID == id {
			return subj, nil
		}
	}
	return nil, fmt.Errorf("subject %s: %w", id, study.ErrNotFound)
}

// CreateSubject inserts a subject and its important dates.
func (s *SQLite) CreateSubject(ctx context.Context, subj *study.Subject) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO subjects (user_id, name, professor, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.user, subj.Name, subj.Professor, subj.Color, timestamp(subj.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting subject: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}

	if err := insertDates(ctx, tx, id, subj.ImportantDates); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	subj.ID = strconv.FormatInt(id, 10)
	return nil
}

// UpdateSubject replaces a subject's fields and important dates.
func (s *SQLite) UpdateSubject(ctx context.Context, subj *study.Subject) error {
	id, err := parseID(subj.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE subjects SET name = ?, professor = ?, color = ?
		WHERE id = ? AND user_id = ?
	`, subj.Name, subj.Professor, subj.Color, id, s.user)
	if err != nil {
		return fmt.Errorf("updating subject: %w", err)
	}
	if err := expectOne(result, "subject", subj.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM important_dates WHERE subject_id = ?`, id); err != nil {
		return fmt.Errorf("clearing important dates: %w", err)
	}
	if err := insertDates(ctx, tx, id, subj.ImportantDates); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSubject removes a subject and its important dates. Sessions that
// reference it are kept.
func (s *SQLite) DeleteSubject(ctx context.Context, id string) error {
	_, err := s.deleteSubject(ctx, id, false)
	return err
}

// DeleteSubjectCascade removes a subject together with its sessions in a
// single transaction.
func (s *SQLite) DeleteSubjectCascade(ctx context.Context, id string) (int, error) {
	return s.deleteSubject(ctx, id, true)
}

func (s *SQLite) deleteSubject(ctx context.Context, id string, cascade bool) (int, error) {
	sid, err := parseID(id)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed := 0
	if cascade {
		result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE subject_id = ? AND user_id = ?`, sid, s.user)
		if err != nil {
			return 0, fmt.Errorf("deleting sessions: %w", err)
		}
		n, _ := result.RowsAffected()
		removed = int(n)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM important_dates
		WHERE subject_id IN (SELECT id FROM subjects WHERE id = ? AND user_id = ?)
	`, sid, s.user); err != nil {
		return 0, fmt.Errorf("deleting important dates: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = ? AND user_id = ?`, sid, s.user)
	if err != nil {
		return 0, fmt.Errorf("deleting subject: %w", err)
	}
	if err := expectOne(result, "subject", id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return removed, nil
}

// ListSessions returns the user's sessions ordered by date.
func (s *SQLite) ListSessions(ctx context.Context) ([]*study.Session, error) {
	query := `
		SELECT id, subject_id, date, duration, type, description, start_time, end_time, created_at
		FROM sessions
		WHERE user_id = ?
		ORDER BY date, start_time, id
	`
	rows, err := s.db.QueryContext(ctx, query, s.user)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*study.Session
	for rows.Next() {
		var (
			sess      study.Session
			id        int64
			subjectID sql.NullInt64
			date      string
			createdAt string
		)
		err := rows.Scan(
			&id,
			&subjectID,
			&date,
			&sess.Duration,
			&sess.Type,
			&sess.Description,
			&sess.StartTime,
			&sess.EndTime,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		sess.ID = strconv.FormatInt(id, 10)
		if subjectID.Valid {
			sess.SubjectID = strconv.FormatInt(subjectID.Int64, 10)
		}
		sess.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parsing session date: %w", err)
		}
		sess.CreatedAt, err = parseDate(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// CreateSession inserts a session.
func (s *SQLite) CreateSession(ctx context.Context, sess *study.Session) error {
	subjectID, err := nullableID(sess.SubjectID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			user_id, subject_id, date, duration, type, description, start_time, end_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.user,
		subjectID,
		sess.Date.Format("2006-01-02"),
		max(0, sess.Duration),
		sess.Type,
		sess.Description,
		sess.StartTime,
		sess.EndTime,
		timestamp(sess.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	sess.ID = strconv.FormatInt(id, 10)
	return nil
}

// UpdateSession replaces a session's fields.
func (s *SQLite) UpdateSession(ctx context.Context, sess *study.Session) error {
	id, err := parseID(sess.ID)
	if err != nil {
		return err
	}
	subjectID, err := nullableID(sess.SubjectID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET subject_id = ?, date = ?, duration = ?, type = ?, description = ?, start_time = ?, end_time = ?
		WHERE id = ? AND user_id = ?
	`,
		subjectID,
		sess.Date.Format("2006-01-02"),
		max(0, sess.Duration),
		sess.Type,
		sess.Description,
		sess.StartTime,
		sess.EndTime,
		id,
		s.user,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return expectOne(result, "session", sess.ID)
}

// DeleteSession removes a session.
func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	sid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND user_id = ?`, sid, s.user)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return expectOne(result, "session", id)
}

// ListTodos returns the user's to-dos, oldest first.
func (s *SQLite) ListTodos(ctx context.Context) ([]*study.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, done, due_date, created_at
		FROM todos
		WHERE user_id = ?
		ORDER BY id
	`, s.user)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var todos []*study.Todo
	for rows.Next() {
		var (
			td        study.Todo
			id        int64
			createdAt string
		)
		if err := rows.Scan(&id, &td.Text, &td.Done, &td.DueDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		td.ID = strconv.FormatInt(id, 10)
		if td.CreatedAt, err = parseDate(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		todos = append(todos, &td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}

// CreateTodo inserts a to-do.
func (s *SQLite) CreateTodo(ctx context.Context, td *study.Todo) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (user_id, text, done, due_date, created_at) VALUES (?, ?, ?, ?, ?)
	`, s.user, td.Text, td.Done, td.DueDate, timestamp(td.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	td.ID = strconv.FormatInt(id, 10)
	return nil
}

// UpdateTodo replaces a to-do's fields.
func (s *SQLite) UpdateTodo(ctx context.Context, td *study.Todo) error {
	id, err := parseID(td.ID)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE todos SET text = ?, done = ?, due_date = ? WHERE id = ? AND user_id = ?
	`, td.Text, td.Done, td.DueDate, id, s.user)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	return expectOne(result, "todo", td.ID)
}

// DeleteTodo removes a to-do.
func (s *SQLite) DeleteTodo(ctx context.Context, id string) error {
	tid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, tid, s.user)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return expectOne(result, "todo", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubject(row scanner) (*study.Subject, int64, error) {
	var (
		subj      study.Subject
		id        int64
		createdAt string
	)
	if err := row.Scan(&id, &subj.Name, &subj.Professor, &subj.Color, &createdAt); err != nil {
		return nil, 0, fmt.Errorf("scanning subject: %w", err)
	}
	subj.ID = strconv.FormatInt(id, 10)
	subj.ImportantDates = []study.ImportantDate{}
	var err error
	if subj.CreatedAt, err = parseDate(createdAt); err != nil {
		return nil, 0, fmt.Errorf("parsing created at: %w", err)
	}
	return &subj, id, nil
}

func insertDates(ctx context.Context, tx *sql.Tx, subjectID int64, dates []study.ImportantDate) error {
	for i, d := range dates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO important_dates (subject_id, position, id, type, date, description)
			VALUES (?, ?, ?, ?, ?, ?)
		`, subjectID, i, d.ID, d.Type, d.Date, d.Description)
		if err != nil {
			return fmt.Errorf("inserting important date: %w", err)
		}
	}
	return nil
}

// parseID converts a store ID to the integer key. Malformed IDs cannot
// exist in the table, so they report ErrNotFound.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q: %w", id, study.ErrNotFound)
	}
	return n, nil
}

func nullableID(id string) (sql.NullInt64, error) {
	if id == "" {
		return sql.NullInt64{}, nil
	}
	n, err := parseID(id)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func expectOne(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, study.ErrNotFound)
	}
	return nil
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(time.RFC3339)
}

// formatStoredDate returns the YYYY-MM-DD form of a DATE column value.
func formatStoredDate(s string) string {
	if t, err := parseDate(s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values become the start of that local day.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateutil.ISODate, s); err == nil {
		return dateutil.DayStart(t.Date()), nil
	}

	// DATE columns can come back as "2006-01-02T00:00:00Z"; that is still
	// a local calendar day.
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		if t, err := time.Parse(dateutil.ISODate, s[:10]); err == nil {
			return dateutil.DayStart(t.Date()), nil
		}
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format: " + s)
}
