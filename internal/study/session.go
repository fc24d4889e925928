package study

import (
	"fmt"
	"strings"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
)

// SessionType represents what kind of time a session records.
type SessionType string

const (
	SessionStudy      SessionType = "study"
	SessionPomodoro   SessionType = "pomodoro"
	SessionExam       SessionType = "exam"
	SessionAssignment SessionType = "assignment"
	SessionClass      SessionType = "class"
	SessionOther      SessionType = "other"
)

// SessionTypes lists every session type in display order.
var SessionTypes = []SessionType{
	SessionStudy, SessionPomodoro, SessionExam, SessionAssignment, SessionClass, SessionOther,
}

// Valid returns true if the session type is a known value.
func (t SessionType) Valid() bool {
	switch t {
	case SessionStudy, SessionPomodoro, SessionExam, SessionAssignment, SessionClass, SessionOther:
		return true
	default:
		return false
	}
}

// IsStudy reports whether the type counts as studying (study or pomodoro).
func (t SessionType) IsStudy() bool {
	return t == SessionStudy || t == SessionPomodoro
}

// ParseSessionType parses a session type, defaulting to study when empty.
func ParseSessionType(s string) (SessionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SessionStudy, nil
	}
	t := SessionType(s)
	if !t.Valid() {
		return "", ErrInvalidSessionType
	}
	return t, nil
}

// Session is a block of time spent on a subject, or on nothing in
// particular when SubjectID is empty (generic and Pomodoro sessions).
type Session struct {
	ID          string      `json:"id"`
	SubjectID   string      `json:"subject_id,omitempty"`
	Date        time.Time   `json:"date"`
	Duration    int         `json:"duration"` // minutes, never negative
	Type        SessionType `json:"type"`
	Description string      `json:"description,omitempty"`
	StartTime   string      `json:"start_time,omitempty"` // "HH:MM"
	EndTime     string      `json:"end_time,omitempty"`   // "HH:MM"
	CreatedAt   time.Time   `json:"created_at"`
}

// HasTimeRange reports whether the session was entered as a start/end pair.
func (s *Session) HasTimeRange() bool {
	return s.StartTime != "" && s.EndTime != ""
}

// SessionInput carries the raw form fields of a session. Duration is kept
// as text because malformed values are coerced to zero rather than rejected.
type SessionInput struct {
	SubjectID   string
	Date        string // YYYY-MM-DD
	Duration    string // minutes
	Type        string
	Description string
	StartTime   string // "HH:MM"
	EndTime     string // "HH:MM"
}

// NewSession creates a new Session with validation. The duration is derived
// from the time range when one is given, otherwise from Duration.
func NewSession(in SessionInput) (*Session, error) {
	s := &Session{CreatedAt: time.Now()}
	if err := s.Apply(in); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply overwrites the fields of s with the validated input, keeping its
// identity and creation time.
func (s *Session) Apply(in SessionInput) error {
	dateStr := strings.TrimSpace(in.Date)
	if dateStr == "" {
		return ErrMissingDate
	}
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return err
	}

	typ, err := ParseSessionType(in.Type)
	if err != nil {
		return err
	}

	start := strings.TrimSpace(in.StartTime)
	end := strings.TrimSpace(in.EndTime)
	if (start == "") != (end == "") {
		return ErrIncompleteTimeRange
	}
	if start != "" {
		if err := ValidateClock(start); err != nil {
			return fmt.Errorf("start time: %w", err)
		}
		if err := ValidateClock(end); err != nil {
			return fmt.Errorf("end time: %w", err)
		}
	}

	s.SubjectID = strings.TrimSpace(in.SubjectID)
	s.Date = date
	s.Type = typ
	s.Description = strings.TrimSpace(in.Description)
	s.StartTime = start
	s.EndTime = end
	s.Duration = ResolveDuration(DurationInput{
		Date:      date,
		Minutes:   in.Duration,
		StartTime: start,
		EndTime:   end,
	})
	return nil
}

// NewPomodoroSession builds the session recorded when a Pomodoro work
// interval completes: no subject, the configured work length, and the
// interval's end as its time range.
func NewPomodoroSession(minutes int, finishedAt time.Time) *Session {
	if minutes < 0 {
		minutes = 0
	}
	started := finishedAt.Add(-time.Duration(minutes) * time.Minute)
	return &Session{
		Date:        dateutil.Normalize(finishedAt),
		Duration:    minutes,
		Type:        SessionPomodoro,
		Description: "Pomodoro",
		StartTime:   started.In(time.Local).Format(clockLayout),
		EndTime:     finishedAt.In(time.Local).Format(clockLayout),
		CreatedAt:   finishedAt,
	}
}

// IsPomodoro returns true if the session was recorded by the Pomodoro timer.
func (s *Session) IsPomodoro() bool {
	return s.Type == SessionPomodoro
}
