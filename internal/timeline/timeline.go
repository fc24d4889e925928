// Package timeline merges study sessions and the important dates embedded in
// subjects into one flat list of dated activities.
package timeline

import (
	"sync"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// Kind tells which variant an Activity holds.
type Kind int

const (
	KindSession Kind = iota
	KindEvent
)

func (k Kind) String() string {
	if k == KindEvent {
		return "event"
	}
	return "session"
}

// Activity is a session or an important date placed on a calendar day.
// Exactly one of Session and Event is set, matching Kind.
type Activity struct {
	Kind        Kind
	Date        time.Time // local midnight
	Type        string    // session type or important date type
	SubjectID   string
	SubjectName string
	Label       string
	Minutes     int

	Session *study.Session
	Event   *study.ImportantDate
}

// IsStudy reports whether the activity is study time (a study or pomodoro
// session). Everything else is shown as an event.
func (a Activity) IsStudy() bool {
	return a.Kind == KindSession && study.SessionType(a.Type).IsStudy()
}

// Merge returns one activity per session and one per parseable important
// date. The result has no particular order.
func Merge(subjects []*study.Subject, sessions []*study.Session) []Activity {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	out := make([]Activity, 0, len(sessions)+countDates(subjects))
	for _, s := range sessions {
		out = append(out, fromSession(s, names[s.SubjectID]))
	}
	for _, subj := range subjects {
		for i := range subj.ImportantDates {
			d := subj.ImportantDates[i]
			day, err := dateutil.ParseDate(d.Date)
			if err != nil || d.Date == "" {
				continue
			}
			if d.ID == "" {
				d.ID = d.Key(subj.ID)
			}
			label := d.Description
			if label == "" {
				label = d.Type.Label() + " " + subj.Name
			}
			out = append(out, Activity{
				Kind:        KindEvent,
				Date:        day,
				Type:        string(d.Type),
				SubjectID:   subj.ID,
				SubjectName: subj.Name,
				Label:       label,
				Event:       &d,
			})
		}
	}
	return out
}

func fromSession(s *study.Session, subjectName string) Activity {
	label := s.Description
	if label == "" {
		label = subjectName
	}
	if label == "" {
		label = string(s.Type)
	}
	return Activity{
		Kind:        KindSession,
		Date:        dateutil.Normalize(s.Date),
		Type:        string(s.Type),
		SubjectID:   s.SubjectID,
		SubjectName: subjectName,
		Label:       label,
		Minutes:     s.Duration,
		Session:     s,
	}
}

func countDates(subjects []*study.Subject) int {
	n := 0
	for _, s := range subjects {
		n += len(s.ImportantDates)
	}
	return n
}

// Merger caches the merged timeline and rebuilds it only when the version of
// either input collection changes.
type Merger struct {
	mu          sync.Mutex
	subjectsVer uint64
	sessionsVer uint64
	valid       bool
	cached      []Activity
	builds      int
}

// Activities returns the merged timeline for the given inputs. The versions
// identify the collections; equal versions mean equal contents.
func (m *Merger) Activities(subjects []*study.Subject, subjectsVer uint64, sessions []*study.Session, sessionsVer uint64) []Activity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.subjectsVer == subjectsVer && m.sessionsVer == sessionsVer {
		return m.cached
	}
	m.cached = Merge(subjects, sessions)
	m.subjectsVer, m.sessionsVer = subjectsVer, sessionsVer
	m.valid = true
	m.builds++
	return m.cached
}

// Builds returns how many times the timeline has been recomputed.
func (m *Merger) Builds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}
