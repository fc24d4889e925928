package stats

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func session(subjectID string, d time.Time, minutes int, typ study.SessionType) *study.Session {
	return &study.Session{SubjectID: subjectID, Date: d, Duration: minutes, Type: typ}
}

func TestSubjectTotals(t *testing.T) {
	subjects := []*study.Subject{
		{ID: "1", Name: "Física", Color: "#111111"},
		{ID: "2", Name: "Dibujo"},
		{ID: "3", Name: "Latín"},
	}
	sessions := []*study.Session{
		session("1", date(2024, 5, 1), 30, study.SessionStudy),
		session("1", date(2024, 5, 2), 25, study.SessionPomodoro),
		session("1", date(2024, 5, 3), 60, study.SessionClass),
		session("2", date(2024, 5, 3), 200, study.SessionExam),
		session("3", date(2024, 5, 3), 0, study.SessionStudy),
		session("", date(2024, 5, 3), 90, study.SessionPomodoro),
	}

	got := SubjectTotals(subjects, sessions)
	if len(got) != 2 {
		t.Fatalf("got %d totals, want 2 (zero totals excluded): %+v", len(got), got)
	}
	if got[0].SubjectID != "2" || got[0].Minutes != 200 {
		t.Errorf("first total = %+v, want subject 2 with 200", got[0])
	}
	if got[1].SubjectID != "1" || got[1].Minutes != 115 || got[1].Color != "#111111" {
		t.Errorf("second total = %+v, want subject 1 with 115", got[1])
	}

	want := []Breakdown{{Label: "Class", Minutes: 60}, {Label: StudyLabel, Minutes: 55}}
	if len(got[1].Breakdown) != len(want) {
		t.Fatalf("breakdown = %+v, want %+v", got[1].Breakdown, want)
	}
	for i := range want {
		if got[1].Breakdown[i] != want[i] {
			t.Errorf("breakdown[%d] = %+v, want %+v", i, got[1].Breakdown[i], want[i])
		}
	}
	if got[0].Breakdown[0].Label != "Exam" {
		t.Errorf("exam label = %q, want Exam", got[0].Breakdown[0].Label)
	}
}

func TestCumulativeCombined(t *testing.T) {
	sessions := []*study.Session{
		session("1", date(2024, 5, 1), 30, study.SessionStudy),
		session("2", time.Date(2024, 5, 1, 21, 0, 0, 0, time.Local), 15, study.SessionStudy),
		session("", date(2024, 5, 3), 25, study.SessionPomodoro),
		session("1", date(2024, 4, 30), 1000, study.SessionStudy),
		session("1", date(2024, 5, 6), 1000, study.SessionStudy),
	}

	series, err := Cumulative(sessions, CumulativeOptions{Start: "2024-05-01", End: "2024-05-05"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTotals := []int{45, 45, 70, 70, 70}
	if len(series.Rows) != len(wantTotals) {
		t.Fatalf("got %d rows, want %d", len(series.Rows), len(wantTotals))
	}
	for i, row := range series.Rows {
		if row.Total != wantTotals[i] {
			t.Errorf("row %s total = %d, want %d", row.Date, row.Total, wantTotals[i])
		}
		if row.Subjects != nil {
			t.Errorf("combined series should have no subject columns, got %v", row.Subjects)
		}
	}
	if series.Rows[0].Date != "2024-05-01" || series.Rows[4].Date != "2024-05-05" {
		t.Errorf("rows span %s..%s", series.Rows[0].Date, series.Rows[4].Date)
	}
	if len(series.Keys) != 0 {
		t.Errorf("expected no keys, got %v", series.Keys)
	}
}

func TestCumulativeSubset(t *testing.T) {
	sessions := []*study.Session{
		session("1", date(2024, 5, 1), 30, study.SessionStudy),
		session("2", date(2024, 5, 2), 15, study.SessionStudy),
		session("3", date(2024, 5, 2), 40, study.SessionStudy),
		session("", date(2024, 5, 2), 25, study.SessionPomodoro),
		session("1", date(2024, 5, 3), 10, study.SessionExam),
	}
	all := []string{"1", "2", "3"}

	series, err := Cumulative(sessions, CumulativeOptions{
		Start:         "2024-05-01",
		End:           "2024-05-03",
		SubjectIDs:    []string{"1", "2"},
		AllSubjectIDs: all,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series.Keys) != 2 || series.Keys[0] != "subject_1" || series.Keys[1] != "subject_2" {
		t.Errorf("keys = %v", series.Keys)
	}

	want := []struct {
		total, s1, s2 int
	}{
		{30, 30, 0},
		{45, 30, 15},
		{55, 40, 15},
	}
	for i, w := range want {
		row := series.Rows[i]
		if row.Total != w.total || row.Subjects["subject_1"] != w.s1 || row.Subjects["subject_2"] != w.s2 {
			t.Errorf("row %s = %+v, want %+v", row.Date, row, w)
		}
	}

	full, err := Cumulative(sessions, CumulativeOptions{
		Start:         "2024-05-01",
		End:           "2024-05-03",
		SubjectIDs:    []string{"3", "2", "1"},
		AllSubjectIDs: all,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full.Keys) != 0 || full.Rows[2].Total != 120 {
		t.Errorf("full selection should combine everything, got keys %v total %d", full.Keys, full.Rows[2].Total)
	}
}

func TestCumulativeProperties(t *testing.T) {
	ranges := []struct {
		start, end string
	}{
		{"2024-02-27", "2024-03-02"},
		{"2024-05-10", "2024-05-10"},
		{"2023-12-25", "2024-01-07"},
	}
	sessions := []*study.Session{
		session("1", date(2024, 2, 28), 20, study.SessionStudy),
		session("1", date(2024, 1, 1), 50, study.SessionStudy),
	}

	for _, rg := range ranges {
		t.Run(rg.start, func(t *testing.T) {
			series, err := Cumulative(sessions, CumulativeOptions{Start: rg.start, End: rg.end})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r, _ := dateutil.NewDateRange(rg.start, rg.end)
			if len(series.Rows) != r.Days() {
				t.Errorf("got %d rows, want %d", len(series.Rows), r.Days())
			}
			for i := 1; i < len(series.Rows); i++ {
				if series.Rows[i].Total < series.Rows[i-1].Total {
					t.Errorf("total decreased at %s", series.Rows[i].Date)
				}
				if series.Rows[i].Date <= series.Rows[i-1].Date {
					t.Errorf("rows out of order at %d", i)
				}
			}
		})
	}

	empty, err := Cumulative(nil, CumulativeOptions{Start: "2024-01-01", End: "2024-01-31"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty.Rows) != 31 || empty.Rows[30].Total != 0 {
		t.Errorf("empty series has %d rows", len(empty.Rows))
	}

	if _, err := Cumulative(nil, CumulativeOptions{Start: "2024-02-01", End: "2024-01-01"}); !errors.Is(err, dateutil.ErrEndDateBeforeStart) {
		t.Errorf("got error %v, want %v", err, dateutil.ErrEndDateBeforeStart)
	}
}

func TestDailyMinutesAndSummarize(t *testing.T) {
	sessions := []*study.Session{
		session("1", date(2024, 5, 6), 30, study.SessionStudy),
		session("2", date(2024, 5, 6), 30, study.SessionPomodoro),
		session("1", date(2024, 5, 8), 45, study.SessionStudy),
		session("1", date(2024, 5, 20), 45, study.SessionStudy),
	}

	days := DailyMinutes(sessions, date(2024, 5, 6), date(2024, 5, 12))
	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	if days[0].Minutes != 60 || days[1].Minutes != 0 || days[2].Minutes != 45 {
		t.Errorf("unexpected daily minutes: %+v", days[:3])
	}

	sum := Summarize(sessions, date(2024, 5, 6), date(2024, 5, 12))
	if sum.TotalMinutes != 105 || sum.Sessions != 3 || sum.ActiveDays != 2 || sum.Days != 7 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.AveragePerDay() != 15 {
		t.Errorf("AveragePerDay() = %d, want 15", sum.AveragePerDay())
	}
}

func TestCompareTotals(t *testing.T) {
	tests := []struct {
		current, previous int
		want              string
	}{
		{120, 60, "+1h vs previous week (+100%)"},
		{30, 60, "-30m vs previous week (-50%)"},
		{60, 60, "no change vs previous week (+0%)"},
		{45, 0, "+45m vs previous week"},
	}
	for _, tt := range tests {
		if got := CompareTotals(tt.current, tt.previous); got != tt.want {
			t.Errorf("CompareTotals(%d, %d) = %q, want %q", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestCumulativeAcrossSkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })

	day, err := dateutil.ParseDate("2024-09-08")
	if err != nil {
		t.Fatal(err)
	}
	sessions := []*study.Session{session("1", day, 60, study.SessionStudy)}

	series, err := Cumulative(sessions, CumulativeOptions{Start: "2024-09-06", End: "2024-09-10"})
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		date  string
		total int
	}{
		{"2024-09-06", 0},
		{"2024-09-07", 0},
		{"2024-09-08", 60},
		{"2024-09-09", 60},
		{"2024-09-10", 60},
	}
	if len(series.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(series.Rows), len(want), series.Rows)
	}
	for i, w := range want {
		if r := series.Rows[i]; r.Date != w.date || r.Total != w.total {
			t.Errorf("row %d = %s:%d, want %s:%d", i, r.Date, r.Total, w.date, w.total)
		}
	}
}
