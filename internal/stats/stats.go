// Package stats aggregates study sessions into per-subject totals and
// cumulative per-day series.
package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// StudyLabel is the breakdown label shared by study and pomodoro sessions.
const StudyLabel = "Estudio"

// Breakdown is the time a subject received under one label.
type Breakdown struct {
	Label   string
	Minutes int
}

// SubjectTotal is the study time recorded for one subject.
type SubjectTotal struct {
	SubjectID string
	Name      string
	Color     string
	Minutes   int
	Breakdown []Breakdown // sorted by minutes, largest first
}

// BreakdownLabel coarsens a session type for display.
func BreakdownLabel(t study.SessionType) string {
	if t.IsStudy() {
		return StudyLabel
	}
	s := string(t)
	if s == "" {
		return "Other"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SubjectTotals sums session minutes per subject. Subjects without time are
// left out and the rest are sorted by total, largest first.
func SubjectTotals(subjects []*study.Subject, sessions []*study.Session) []SubjectTotal {
	type acc struct {
		total  int
		labels map[string]int
	}
	bySubject := make(map[string]*acc, len(subjects))
	for _, s := range sessions {
		if s.SubjectID == "" {
			continue
		}
		a, ok := bySubject[s.SubjectID]
		if !ok {
			a = &acc{labels: make(map[string]int)}
			bySubject[s.SubjectID] = a
		}
		a.total += s.Duration
		a.labels[BreakdownLabel(s.Type)] += s.Duration
	}

	var out []SubjectTotal
	for _, subj := range subjects {
		a, ok := bySubject[subj.ID]
		if !ok || a.total <= 0 {
			continue
		}
		st := SubjectTotal{
			SubjectID: subj.ID,
			Name:      subj.Name,
			Color:     subj.Color,
			Minutes:   a.total,
		}
		for label, mins := range a.labels {
			st.Breakdown = append(st.Breakdown, Breakdown{Label: label, Minutes: mins})
		}
		slices.SortFunc(st.Breakdown, func(x, y Breakdown) int {
			if c := cmp.Compare(y.Minutes, x.Minutes); c != 0 {
				return c
			}
			return strings.Compare(x.Label, y.Label)
		})
		out = append(out, st)
	}

	slices.SortStableFunc(out, func(x, y SubjectTotal) int {
		return cmp.Compare(y.Minutes, x.Minutes)
	})
	return out
}

// DayTotal is the non-cumulative minutes of one day.
type DayTotal struct {
	Date    time.Time
	Minutes int
}

// DailyMinutes returns one entry per day from start to end inclusive with
// the minutes recorded that day.
func DailyMinutes(sessions []*study.Session, start, end time.Time) []DayTotal {
	perDay := make(map[string]int)
	for _, s := range sessions {
		perDay[dateutil.FormatISODate(s.Date)] += s.Duration
	}
	var out []DayTotal
	for d := range dateutil.Days(start, end) {
		out = append(out, DayTotal{Date: d, Minutes: perDay[dateutil.FormatISODate(d)]})
	}
	return out
}

// Summary condenses the sessions of a period.
type Summary struct {
	TotalMinutes int
	Sessions     int
	ActiveDays   int
	Days         int
}

// AveragePerDay returns the mean minutes over every day of the period.
func (s Summary) AveragePerDay() int {
	if s.Days == 0 {
		return 0
	}
	return s.TotalMinutes / s.Days
}

// Summarize totals the sessions that fall between start and end inclusive.
func Summarize(sessions []*study.Session, start, end time.Time) Summary {
	r := dateutil.DateRange{Start: dateutil.Normalize(start), End: dateutil.Normalize(end)}
	sum := Summary{Days: max(0, r.Days())}
	active := make(map[string]bool)
	for _, s := range sessions {
		if !r.Contains(s.Date) {
			continue
		}
		sum.TotalMinutes += s.Duration
		sum.Sessions++
		if s.Duration > 0 {
			active[dateutil.FormatISODate(s.Date)] = true
		}
	}
	sum.ActiveDays = len(active)
	return sum
}

// CompareTotals describes the change from previous to current minutes.
func CompareTotals(current, previous int) string {
	diff := current - previous
	sign := "+"
	if diff < 0 {
		sign = "-"
	}
	change := sign + study.FormatMinutes(abs(diff))
	if diff == 0 {
		change = "no change"
	}
	if previous == 0 {
		return change + " vs previous week"
	}
	pct := diff * 100 / previous
	return fmt.Sprintf("%s vs previous week (%+d%%)", change, pct)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
