// Package docstore implements study.Repository on a bbolt file. Each user
// gets a bucket holding one bucket per collection, and every record is a
// JSON document keyed by a generated ID. Important dates live inside their
// subject's document.
package docstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// DefaultUser scopes data when no user is configured.
const DefaultUser = "default"

var (
	usersBucket    = []byte("users")
	subjectsBucket = []byte("subjects")
	sessionsBucket = []byte("sessions")
	todosBucket    = []byte("todos")
)

var errNoDocument = errors.New("document not found")

// Store is a bbolt-backed repository for one user.
type Store struct {
	db   *bbolt.DB
	user []byte
}

var (
	_ study.Repository     = (*Store)(nil)
	_ study.CascadeDeleter = (*Store)(nil)
)

// Open opens (or creates) the database at path and prepares the user's
// buckets.
func Open(path, user string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	if user == "" {
		user = DefaultUser
	}
	s := &Store{db: db, user: []byte(user)}

	err = db.Update(func(tx *bbolt.Tx) error {
		users, err := tx.CreateBucketIfNotExists(usersBucket)
		if err != nil {
			return err
		}
		ub, err := users.CreateBucketIfNotExists(s.user)
		if err != nil {
			return err
		}
		for _, name := range [][]byte{subjectsBucket, sessionsBucket, todosBucket} {
			if _, err := ub.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return s, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) collection(tx *bbolt.Tx, name []byte) *bbolt.Bucket {
	return tx.Bucket(usersBucket).Bucket(s.user).Bucket(name)
}

func put[T any](b *bbolt.Bucket, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return b.Put([]byte(id), data)
}

func get[T any](b *bbolt.Bucket, id string) (*T, error) {
	data := b.Get([]byte(id))
	if data == nil {
		return nil, errNoDocument
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return &out, nil
}

func list[T any](b *bbolt.Bucket) ([]*T, error) {
	var out []*T
	err := b.ForEach(func(k, v []byte) error {
		var doc T
		if err := json.Unmarshal(v, &doc); err != nil {
			return fmt.Errorf("decoding document %s: %w", k, err)
		}
		out = append(out, &doc)
		return nil
	})
	return out, err
}

// ctxErr lets a cancelled context abort before a transaction starts.
// bbolt transactions themselves are not interruptible.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	return nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, errNoDocument) {
		return fmt.Errorf("%s %s: %w", kind, id, study.ErrNotFound)
	}
	return err
}

// ListSubjects returns all subjects, oldest first.
func (s *Store) ListSubjects(ctx context.Context) ([]*study.Subject, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var subjects []*study.Subject
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		subjects, err = list[study.Subject](s.collection(tx, subjectsBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	for _, subj := range subjects {
		if subj.ImportantDates == nil {
			subj.ImportantDates = []study.ImportantDate{}
		}
	}
	slices.SortStableFunc(subjects, func(a, b *study.Subject) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return subjects, nil
}

// GetSubject retrieves a subject by ID.
func (s *Store) GetSubject(ctx context.Context, id string) (*study.Subject, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var subj *study.Subject
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		subj, err = get[study.Subject](s.collection(tx, subjectsBucket), id)
		return err
	})
	if err != nil {
		return nil, notFound("subject", id, err)
	}
	return subj, nil
}

// CreateSubject stores a new subject under a generated ID.
func (s *Store) CreateSubject(ctx context.Context, subj *study.Subject) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id := uuid.NewString()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		doc := *subj
		doc.ID = id
		return put(s.collection(tx, subjectsBucket), id, &doc)
	})
	if err != nil {
		return fmt.Errorf("inserting subject: %w", err)
	}
	subj.ID = id
	return nil
}

// UpdateSubject replaces a subject document.
func (s *Store) UpdateSubject(ctx context.Context, subj *study.Subject) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := s.collection(tx, subjectsBucket)
		if b.Get([]byte(subj.ID)) == nil {
			return errNoDocument
		}
		return put(b, subj.ID, subj)
	})
	if err != nil {
		return notFound("subject", subj.ID, err)
	}
	return nil
}

// DeleteSubject removes a subject document only.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(s.collection(tx, subjectsBucket), id)
	})
	return notFound("subject", id, err)
}

// DeleteSubjectCascade removes a subject and its sessions in one transaction.
func (s *Store) DeleteSubjectCascade(ctx context.Context, id string) (int, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteDoc(s.collection(tx, subjectsBucket), id); err != nil {
			return err
		}
		sessions := s.collection(tx, sessionsBucket)
		var doomed [][]byte
		err := sessions.ForEach(func(k, v []byte) error {
			var sess study.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				return fmt.Errorf("decoding session %s: %w", k, err)
			}
			if sess.SubjectID == id {
				doomed = append(doomed, slices.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// Keys are deleted after iterating; bbolt cursors must not see
		// their bucket modified mid-walk.
		for _, k := range doomed {
			if err := sessions.Delete(k); err != nil {
				return err
			}
		}
		removed = len(doomed)
		return nil
	})
	if err != nil {
		return 0, notFound("subject", id, err)
	}
	return removed, nil
}

// ListSessions returns all sessions ordered by date and start time.
func (s *Store) ListSessions(ctx context.Context) ([]*study.Session, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var sessions []*study.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		sessions, err = list[study.Session](s.collection(tx, sessionsBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	for _, sess := range sessions {
		sess.Date = sess.Date.In(time.Local)
	}
	slices.SortStableFunc(sessions, func(a, b *study.Session) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sessions, nil
}

// CreateSession stores a new session under a generated ID.
func (s *Store) CreateSession(ctx context.Context, sess *study.Session) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id := uuid.NewString()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		doc := *sess
		doc.ID = id
		doc.Duration = max(0, doc.Duration)
		return put(s.collection(tx, sessionsBucket), id, &doc)
	})
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	sess.ID = id
	return nil
}

// UpdateSession replaces a session document.
func (s *Store) UpdateSession(ctx context.Context, sess *study.Session) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := s.collection(tx, sessionsBucket)
		if b.Get([]byte(sess.ID)) == nil {
			return errNoDocument
		}
		return put(b, sess.ID, sess)
	})
	return notFound("session", sess.ID, err)
}

// DeleteSession removes a session document.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(s.collection(tx, sessionsBucket), id)
	})
	return notFound("session", id, err)
}

// ListTodos returns the to-do list, oldest first.
func (s *Store) ListTodos(ctx context.Context) ([]*study.Todo, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var todos []*study.Todo
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		todos, err = list[study.Todo](s.collection(tx, todosBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	slices.SortStableFunc(todos, func(a, b *study.Todo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return todos, nil
}

// CreateTodo stores a new to-do under a generated ID.
func (s *Store) CreateTodo(ctx context.Context, td *study.Todo) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id := uuid.NewString()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		doc := *td
		doc.ID = id
		return put(s.collection(tx, todosBucket), id, &doc)
	})
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	td.ID = id
	return nil
}

// UpdateTodo replaces a to-do document.
func (s *Store) UpdateTodo(ctx context.Context, td *study.Todo) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := s.collection(tx, todosBucket)
		if b.Get([]byte(td.ID)) == nil {
			return errNoDocument
		}
		return put(b, td.ID, td)
	})
	return notFound("todo", td.ID, err)
}

// DeleteTodo removes a to-do document.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(s.collection(tx, todosBucket), id)
	})
	return notFound("todo", id, err)
}

func deleteDoc(b *bbolt.Bucket, id string) error {
	if b.Get([]byte(id)) == nil {
		return errNoDocument
	}
	return b.Delete([]byte(id))
}
