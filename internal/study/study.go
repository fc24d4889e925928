// Package study defines the core domain types for the planner: subjects with
// their embedded important dates, study sessions and to-dos.
package study

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
)

// DefaultColor is assigned to subjects created without a color.
const DefaultColor = "#6366F1"

// Validation errors.
var (
	ErrEmptyName           = errors.New("subject name cannot be empty")
	ErrInvalidColor        = errors.New("color must be a hex value like #6366F1")
	ErrMissingDate         = errors.New("date is required")
	ErrInvalidTimeFormat   = errors.New("time must be in HH:MM format")
	ErrIncompleteTimeRange = errors.New("start and end time must be given together")
	ErrInvalidSessionType  = errors.New("session type must be one of study, pomodoro, exam, assignment, class, other")
	ErrInvalidDateType     = errors.New("important date type must be one of examen, entrega, clase, otro")
	ErrEmptyTodo           = errors.New("todo text cannot be empty")
)

// Domain errors.
var (
	ErrNotFound = errors.New("not found")
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DateType classifies an important date of a subject.
type DateType string

const (
	DateExam     DateType = "examen"
	DateDeadline DateType = "entrega"
	DateClass    DateType = "clase"
	DateOther    DateType = "otro"
)

// Valid returns true if the date type is a known value.
func (t DateType) Valid() bool {
	switch t {
	case DateExam, DateDeadline, DateClass, DateOther:
		return true
	default:
		return false
	}
}

// Label returns a display label for the date type.
func (t DateType) Label() string {
	switch t {
	case DateExam:
		return "Examen"
	case DateDeadline:
		return "Entrega"
	case DateClass:
		return "Clase"
	default:
		return "Otro"
	}
}

// ImportantDate is a dated event embedded in a Subject. It has no life of
// its own: deleting the subject removes it.
type ImportantDate struct {
	ID          string   `json:"id,omitempty"`
	Type        DateType `json:"type"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Description string   `json:"description"`
}

// NewImportantDate validates the fields and assigns a generated identifier.
func NewImportantDate(typ, date, description string) (ImportantDate, error) {
	dt := DateType(strings.ToLower(strings.TrimSpace(typ)))
	if dt == "" {
		dt = DateOther
	}
	if !dt.Valid() {
		return ImportantDate{}, ErrInvalidDateType
	}

	date = strings.TrimSpace(date)
	if date == "" {
		return ImportantDate{}, ErrMissingDate
	}
	if _, err := dateutil.ParseDate(date); err != nil {
		return ImportantDate{}, err
	}

	return ImportantDate{
		ID:          uuid.NewString(),
		Type:        dt,
		Date:        date,
		Description: strings.TrimSpace(description),
	}, nil
}

// Key returns the identifier of the date. Dates stored before identifiers
// were generated fall back to one derived from their fields, which collides
// when two dates of a subject share every field.
func (d ImportantDate) Key(subjectID string) string {
	if d.ID != "" {
		return d.ID
	}
	return subjectID + "|" + d.Date + "|" + string(d.Type) + "|" + d.Description
}

// Subject is a course being studied.
type Subject struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Professor      string          `json:"professor,omitempty"`
	Color          string          `json:"color"`
	ImportantDates []ImportantDate `json:"important_dates"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SubjectInput carries the user-editable fields of a Subject.
type SubjectInput struct {
	Name      string
	Professor string
	Color     string
}

// Normalize trims the fields and applies the default color.
func (in SubjectInput) Normalize() SubjectInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Professor = strings.TrimSpace(in.Professor)
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = DefaultColor
	}
	return in
}

// Validate checks the input without touching storage.
func (in SubjectInput) Validate() error {
	in = in.Normalize()
	if in.Name == "" {
		return ErrEmptyName
	}
	if !hexColor.MatchString(in.Color) {
		return ErrInvalidColor
	}
	return nil
}

// NewSubject creates a new Subject with validation.
func NewSubject(in SubjectInput) (*Subject, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.Normalize()
	return &Subject{
		Name:           in.Name,
		Professor:      in.Professor,
		Color:          in.Color,
		ImportantDates: []ImportantDate{},
		CreatedAt:      time.Now(),
	}, nil
}

// Apply overwrites the editable fields of s with the validated input.
func (s *Subject) Apply(in SubjectInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	in = in.Normalize()
	s.Name = in.Name
	s.Professor = in.Professor
	s.Color = in.Color
	return nil
}

// Clone returns a deep copy, so that snapshot values are never shared.
func (s Subject) Clone() Subject {
	s.ImportantDates = append([]ImportantDate(nil), s.ImportantDates...)
	return s
}

// RemoveDate drops the important date with the given key and reports
// whether anything was removed.
func (s *Subject) RemoveDate(key string) bool {
	for i, d := range s.ImportantDates {
		if d.Key(s.ID) == key {
			s.ImportantDates = append(s.ImportantDates[:i:i], s.ImportantDates[i+1:]...)
			return true
		}
	}
	return false
}

// Todo is an entry of the to-do list.
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	DueDate   string    `json:"due_date,omitempty"` // YYYY-MM-DD, optional
	CreatedAt time.Time `json:"created_at"`
}

// NewTodo creates a new Todo with validation.
func NewTodo(text, dueDate string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTodo
	}
	dueDate = strings.TrimSpace(dueDate)
	if dueDate != "" {
		if _, err := dateutil.ParseDate(dueDate); err != nil {
			return nil, err
		}
	}
	return &Todo{
		Text:      text,
		DueDate:   dueDate,
		CreatedAt: time.Now(),
	}, nil
}
