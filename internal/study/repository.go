package study

import "context"

// Repository defines the storage interface for the planner's collections.
// Every implementation scopes its data to a single user.
type Repository interface {
	// ListSubjects returns all subjects with their important dates, oldest first.
	ListSubjects(ctx context.Context) ([]*Subject, error)

	// GetSubject retrieves a subject by ID. Returns ErrNotFound if missing.
	GetSubject(ctx context.Context, id string) (*Subject, error)

	// CreateSubject stores a new subject and assigns its ID.
	CreateSubject(ctx context.Context, s *Subject) error

	// UpdateSubject replaces a subject, including its important dates.
	UpdateSubject(ctx context.Context, s *Subject) error

	// DeleteSubject removes a subject only. Sessions referencing it are left
	// alone; see CascadeDeleter.
	DeleteSubject(ctx context.Context, id string) error

	// ListSessions returns all study sessions ordered by date.
	ListSessions(ctx context.Context) ([]*Session, error)

	// CreateSession stores a new session and assigns its ID.
	CreateSession(ctx context.Context, s *Session) error

	// UpdateSession replaces an existing session.
	UpdateSession(ctx context.Context, s *Session) error

	// DeleteSession removes a session by ID.
	DeleteSession(ctx context.Context, id string) error

	// ListTodos returns the to-do list, oldest first.
	ListTodos(ctx context.Context) ([]*Todo, error)

	// CreateTodo stores a new to-do and assigns its ID.
	CreateTodo(ctx context.Context, t *Todo) error

	// UpdateTodo replaces an existing to-do.
	UpdateTodo(ctx context.Context, t *Todo) error

	// DeleteTodo removes a to-do by ID.
	DeleteTodo(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}

// CascadeDeleter is implemented by repositories that can delete a subject
// together with all of its sessions in one atomic step.
type CascadeDeleter interface {
	// DeleteSubjectCascade removes the subject and its sessions, returning
	// how many sessions were removed.
	DeleteSubjectCascade(ctx context.Context, id string) (int, error)
}
