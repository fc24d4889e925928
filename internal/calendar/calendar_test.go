package calendar

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParseView(t *testing.T) {
	tests := []struct {
		input   string
		want    View
		wantErr error
	}{
		{"day", ViewDaily, nil},
		{"Monthly", ViewMonthly, nil},
		{"w", ViewWeekly, nil},
		{"", ViewWeekly, nil},
		{"year", "", ErrInvalidView},
	}
	for _, tt := range tests {
		got, err := ParseView(tt.input)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("ParseView(%q) = %q, %v; want %q, %v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestBuildMonthly(t *testing.T) {
	tests := []struct {
		name   string
		ref    time.Time
		blanks int
		days   int
	}{
		{"month starting on sunday", date(2024, 9, 15), 6, 30},
		{"month starting on monday", date(2024, 7, 31), 0, 31},
		{"leap february", date(2024, 2, 1), 3, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.ref, ViewMonthly, nil, tt.ref)
			if len(g.Cells) != tt.blanks+tt.days {
				t.Fatalf("got %d cells, want %d", len(g.Cells), tt.blanks+tt.days)
			}
			for i := 0; i < tt.blanks; i++ {
				if !g.Cells[i].Blank {
					t.Errorf("cell %d should be blank", i)
				}
			}
			first := g.Cells[tt.blanks]
			if first.Blank || first.Date.Day() != 1 {
				t.Errorf("first day cell = %+v, want day 1", first)
			}
			if n := len(g.Days()); n != tt.days {
				t.Errorf("Days() = %d, want %d", n, tt.days)
			}
			if rows := g.Rows(); len(rows[0]) != 7 && len(g.Cells) >= 7 {
				t.Errorf("first row has %d cells", len(rows[0]))
			}
		})
	}
}

func TestBuildWeeklyAndDaily(t *testing.T) {
	ref := date(2024, 5, 10) // Friday
	week := Build(ref, ViewWeekly, nil, ref)
	if len(week.Cells) != 7 {
		t.Fatalf("weekly grid has %d cells, want 7", len(week.Cells))
	}
	if !week.Cells[0].Date.Equal(date(2024, 5, 6)) || !week.Cells[6].Date.Equal(date(2024, 5, 12)) {
		t.Errorf("week spans %v..%v", week.Cells[0].Date, week.Cells[6].Date)
	}
	if !week.Cells[4].IsToday {
		t.Error("expected friday to be flagged as today")
	}
	for i, c := range week.Cells {
		if i != 4 && c.IsToday {
			t.Errorf("cell %d unexpectedly flagged as today", i)
		}
	}

	day := Build(time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local), ViewDaily, nil, date(2024, 1, 1))
	if len(day.Cells) != 1 || !day.Cells[0].Date.Equal(ref) || day.Cells[0].IsToday {
		t.Errorf("unexpected daily grid: %+v", day.Cells)
	}
}

func TestBuildDailyScenario(t *testing.T) {
	subjects := []*study.Subject{{
		ID:             "A",
		Name:           "Subject A",
		ImportantDates: []study.ImportantDate{{ID: "e1", Type: study.DateExam, Date: "2024-05-10"}},
	}}
	sessions := []*study.Session{{
		ID:        "s1",
		SubjectID: "A",
		Date:      date(2024, 5, 10),
		Duration:  60,
		Type:      study.SessionStudy,
	}}

	g := Build(date(2024, 5, 10), ViewDaily, timeline.Merge(subjects, sessions), date(2024, 5, 10))
	cell := g.Cells[0]

	if len(cell.Activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(cell.Activities))
	}
	if len(cell.Sessions) != 1 || cell.Sessions[0].Minutes != 60 {
		t.Errorf("expected one 60 minute session, got %+v", cell.Sessions)
	}
	if len(cell.Events) != 1 || cell.Events[0].Type != string(study.DateExam) {
		t.Errorf("expected one exam event, got %+v", cell.Events)
	}
	if cell.StudyMinutes() != 60 {
		t.Errorf("StudyMinutes() = %d, want 60", cell.StudyMinutes())
	}
	if !cell.IsToday {
		t.Error("expected the cell to be today")
	}
}

func TestNonStudySessionsAreEvents(t *testing.T) {
	sessions := []*study.Session{
		{ID: "1", Date: date(2024, 5, 10), Duration: 25, Type: study.SessionPomodoro},
		{ID: "2", Date: date(2024, 5, 10), Duration: 120, Type: study.SessionExam},
	}
	cell := Build(date(2024, 5, 10), ViewDaily, timeline.Merge(nil, sessions), date(2024, 5, 10)).Cells[0]
	if len(cell.Sessions) != 1 || len(cell.Events) != 1 {
		t.Errorf("got %d sessions and %d events, want 1 and 1", len(cell.Sessions), len(cell.Events))
	}
}

func TestNavigator(t *testing.T) {
	now := date(2024, 1, 31)

	t.Run("month steps pin to day one", func(t *testing.T) {
		n := NewNavigator(ViewMonthly, now)
		n.Next()
		if !n.Reference.Equal(date(2024, 2, 1)) {
			t.Errorf("Next() = %v, want 2024-02-01", n.Reference)
		}
		n.Next()
		if !n.Reference.Equal(date(2024, 3, 1)) {
			t.Errorf("Next() = %v, want 2024-03-01", n.Reference)
		}
		n.Prev()
		n.Prev()
		n.Prev()
		if !n.Reference.Equal(date(2023, 12, 1)) {
			t.Errorf("Prev() = %v, want 2023-12-01", n.Reference)
		}
		if n.Title() != "December 2023" {
			t.Errorf("Title() = %q", n.Title())
		}
	})

	t.Run("week and day steps", func(t *testing.T) {
		n := NewNavigator(ViewWeekly, now)
		n.Next()
		if !n.Reference.Equal(date(2024, 2, 7)) {
			t.Errorf("Next() = %v, want 2024-02-07", n.Reference)
		}
		n.SetView(ViewDaily)
		n.Prev()
		if !n.Reference.Equal(date(2024, 2, 6)) {
			t.Errorf("Prev() = %v, want 2024-02-06", n.Reference)
		}
		n.Today(now)
		if !n.Reference.Equal(now) {
			t.Errorf("Today() = %v, want %v", n.Reference, now)
		}
	})

	t.Run("titles", func(t *testing.T) {
		n := NewNavigator(ViewWeekly, date(2024, 5, 10))
		if got := n.Title(); got != "May 6 - May 12, 2024" {
			t.Errorf("week Title() = %q", got)
		}
		n = NewNavigator(ViewWeekly, date(2024, 12, 31))
		if got := n.Title(); got != "Dec 30, 2024 - Jan 5, 2025" {
			t.Errorf("year-spanning Title() = %q", got)
		}
		n = NewNavigator(ViewDaily, date(2024, 5, 10))
		if got := n.Title(); got != "Friday, May 10 2024" {
			t.Errorf("day Title() = %q", got)
		}
	})
}

func TestBuildAcrossSkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })

	day, _ := dateutil.ParseDate("2024-09-08")
	sess := &study.Session{ID: "1", Date: day, Duration: 45, Type: study.SessionStudy}
	acts := timeline.Merge(nil, []*study.Session{sess})

	daily := Build(day, ViewDaily, acts, day)
	if got := dateutil.FormatISODate(daily.Cells[0].Date); got != "2024-09-08" {
		t.Errorf("daily cell date = %s, want 2024-09-08", got)
	}
	if daily.Cells[0].StudyMinutes() != 45 {
		t.Errorf("daily study minutes = %d, want 45", daily.Cells[0].StudyMinutes())
	}

	weekly := Build(day, ViewWeekly, acts, day)
	seen := map[string]bool{}
	for _, c := range weekly.Cells {
		seen[dateutil.FormatISODate(c.Date)] = true
	}
	if len(seen) != 7 || !seen["2024-09-02"] || !seen["2024-09-08"] {
		t.Errorf("weekly days = %v, want 2024-09-02..2024-09-08", seen)
	}

	nav := NewNavigator(ViewDaily, day)
	nav.Prev()
	nav.Next()
	nav.Next()
	if got := dateutil.FormatISODate(nav.Reference); got != "2024-09-09" {
		t.Errorf("navigator = %s, want 2024-09-09", got)
	}
}
