package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	steps := []struct {
		name  string
		query string
	}{
		{"subjects", `
			CREATE TABLE IF NOT EXISTS subjects (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    TEXT NOT NULL,
				name       TEXT NOT NULL,
				professor  TEXT NOT NULL DEFAULT '',
				color      TEXT NOT NULL DEFAULT '#6366F1',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id);
		`},
		{"important_dates", `
			CREATE TABLE IF NOT EXISTS important_dates (
				subject_id  INTEGER NOT NULL REFERENCES subjects(id),
				position    INTEGER NOT NULL,
				id          TEXT NOT NULL DEFAULT '',
				type        TEXT NOT NULL CHECK(type IN ('examen', 'entrega', 'clase', 'otro')),
				date        DATE NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (subject_id, position)
			);
		`},
		{"sessions", `
			CREATE TABLE IF NOT EXISTS sessions (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id     TEXT NOT NULL,
				subject_id  INTEGER REFERENCES subjects(id),
				date        DATE NOT NULL,
				duration    INTEGER NOT NULL DEFAULT 0 CHECK(duration >= 0),
				type        TEXT NOT NULL CHECK(type IN ('study', 'pomodoro', 'exam', 'assignment', 'class', 'other')),
				description TEXT NOT NULL DEFAULT '',
				start_time  TEXT NOT NULL DEFAULT '',
				end_time    TEXT NOT NULL DEFAULT '',
				created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON sessions(user_id, date);
			CREATE INDEX IF NOT EXISTS idx_sessions_subject ON sessions(subject_id);
		`},
		{"todos", `
			CREATE TABLE IF NOT EXISTS todos (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    TEXT NOT NULL,
				text       TEXT NOT NULL,
				done       INTEGER NOT NULL DEFAULT 0,
				due_date   TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id);
		`},
	}

	for _, step := range steps {
		if _, err := s.db.Exec(step.query); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}
	return nil
}
