package ui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ikersanz-debug/MyTracker/internal/config"
	"github.com/ikersanz-debug/MyTracker/internal/llm"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = driver
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "data", "tracker.db")
	cfg.Storage.User = "tester"
	cfg.Pomodoro.Notify = false
	return cfg
}

// run executes one command line on a fresh App and returns stdout.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	a := NewApp(cfg)
	defer func() { _ = a.Close() }()

	var out, errOut bytes.Buffer
	a.root.SetOut(&out)
	a.root.SetErr(&errOut)
	a.root.SetArgs(append(args, "--no-color"))
	err := a.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, testConfig(t, config.DriverSQLite), "version")
	if !strings.HasPrefix(out, "mytracker dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestSubjectLifecycle(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBolt} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)

			out := mustRun(t, cfg, "subject", "add", "Álgebra", "--professor", "Dra. Ruiz")
			assertContains(t, out, "Created subject #", "Álgebra", study.DefaultColor)

			mustRun(t, cfg, "subject", "edit", "álgebra", "--color", "#A6E3A1")
			mustRun(t, cfg, "subject", "date", "add", "Álgebra", "--type", "examen", "--date", "2024-06-14", "--desc", "Final")

			out = mustRun(t, cfg, "subject", "list", "--dates")
			assertContains(t, out, "Álgebra", "Dra. Ruiz", "2024-06-14", "Examen", "Final", "id: ")

			out = mustRun(t, cfg, "subject", "delete", "Álgebra")
			assertContains(t, out, "Deleted subject")

			out = mustRun(t, cfg, "subject", "list")
			assertContains(t, out, "No subjects yet")
		})
	}
}

func TestSubjectErrors(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	if _, err := run(t, cfg, "subject", "add", "  "); !errors.Is(err, study.ErrEmptyName) {
		t.Errorf("blank name: err = %v, want ErrEmptyName", err)
	}
	if _, err := run(t, cfg, "subject", "edit", "Nope", "--name", "x"); !errors.Is(err, study.ErrNotFound) {
		t.Errorf("missing subject: err = %v, want ErrNotFound", err)
	}

	mustRun(t, cfg, "subject", "add", "Física")
	mustRun(t, cfg, "subject", "add", "física")
	if _, err := run(t, cfg, "subject", "delete", "FÍSICA"); !errors.Is(err, errAmbiguousSubject) {
		t.Errorf("ambiguous name: err = %v, want errAmbiguousSubject", err)
	}
	if _, err := run(t, cfg, "subject", "date", "add", "1", "--type", "party", "--date", "2024-06-14"); !errors.Is(err, study.ErrInvalidDateType) {
		t.Errorf("bad date type: err = %v, want ErrInvalidDateType", err)
	}
}

func TestSessionCommands(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	mustRun(t, cfg, "subject", "add", "Álgebra")

	out := mustRun(t, cfg, "session", "add", "-s", "Álgebra", "--date", "2024-05-06", "--start", "22:30", "--end", "00:15")
	assertContains(t, out, "Logged session #1: 1h 45m study on 2024-05-06")

	out = mustRun(t, cfg, "session", "add", "--date", "2024-05-07", "-m", "30", "--type", "class", "--desc", "Tutoría")
	assertContains(t, out, "30m class on 2024-05-07")

	out = mustRun(t, cfg, "session", "list", "--start", "2024-05-06", "--end", "2024-05-12")
	assertContains(t, out, "Mon May 6", "22:30-00:15", "Álgebra", "Tue May 7", "(general)", "Tutoría", "2 sessions, 2h 15m")

	out = mustRun(t, cfg, "session", "list", "--start", "2024-05-06", "--end", "2024-05-12", "-s", "Álgebra")
	assertContains(t, out, "1 sessions, 1h 45m")

	mustRun(t, cfg, "session", "edit", "1", "--start", "", "--end", "", "-m", "60")
	out = mustRun(t, cfg, "session", "list", "--start", "2024-05-06")
	assertContains(t, out, "1 sessions, 1h")

	mustRun(t, cfg, "session", "delete", "2")
	out = mustRun(t, cfg, "session", "list", "--start", "2024-05-07")
	assertContains(t, out, "No sessions found")
}

func TestSessionEditMinutesOnRange(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	mustRun(t, cfg, "session", "add", "--date", "2024-05-06", "--start", "10:00", "--end", "11:30")
	mustRun(t, cfg, "session", "add", "--date", "2024-05-06", "--start", "14:00", "--end", "15:00")

	mustRun(t, cfg, "session", "edit", "1", "-m", "45")
	out := mustRun(t, cfg, "session", "list", "--start", "2024-05-06")
	assertContains(t, out, "14:00-15:00", "2 sessions, 1h 45m")
	if strings.Contains(out, "10:00-11:30") {
		t.Errorf("time range kept after editing minutes:\n%s", out)
	}

	mustRun(t, cfg, "session", "edit", "2", "--end", "16:00")
	out = mustRun(t, cfg, "session", "list", "--start", "2024-05-06")
	assertContains(t, out, "14:00-16:00", "2 sessions, 2h 45m")
}

func TestSessionValidation(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"half range", []string{"--start", "10:00"}, study.ErrIncompleteTimeRange},
		{"bad clock", []string{"--start", "9:00", "--end", "10:00"}, study.ErrInvalidTimeFormat},
		{"bad type", []string{"-m", "30", "--type", "nap"}, study.ErrInvalidSessionType},
		{"unknown subject", []string{"-m", "30", "-s", "Historia"}, study.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfg, append([]string{"session", "add"}, tt.args...)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTodoCommands(t *testing.T) {
	cfg := testConfig(t, config.DriverBolt)

	out := mustRun(t, cfg, "todo", "add", "Repasar tema 4", "--due", "2024-05-10")
	assertContains(t, out, "Added to-do #", "Repasar tema 4")
	mustRun(t, cfg, "todo", "add", "Imprimir apuntes")

	out = mustRun(t, cfg, "todo", "list")
	assertContains(t, out, "Repasar tema 4", "due 2024-05-10", "Imprimir apuntes")

	a := NewApp(cfg)
	st, err := a.openStore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	first := st.Snapshot().Todos[0].ID
	_ = a.Close()

	out = mustRun(t, cfg, "todo", "done", first)
	assertContains(t, out, "is done")

	out = mustRun(t, cfg, "todo", "list")
	if strings.Contains(out, "Repasar tema 4") {
		t.Errorf("finished to-do listed without --all:\n%s", out)
	}
	out = mustRun(t, cfg, "todo", "list", "--all")
	assertContains(t, out, "✓", "Repasar tema 4")

	if _, err := run(t, cfg, "todo", "add", " "); !errors.Is(err, study.ErrEmptyTodo) {
		t.Errorf("blank todo: err = %v, want ErrEmptyTodo", err)
	}
}

func seedWeek(t *testing.T, cfg *config.Config) {
	t.Helper()
	mustRun(t, cfg, "subject", "add", "Álgebra")
	mustRun(t, cfg, "subject", "add", "Física")
	mustRun(t, cfg, "session", "add", "-s", "Álgebra", "--date", "2024-05-06", "-m", "90")
	mustRun(t, cfg, "session", "add", "-s", "Física", "--date", "2024-05-07", "-m", "30")
	mustRun(t, cfg, "subject", "date", "add", "Física", "--type", "entrega", "--date", "2024-05-10", "--desc", "Práctica 2")
}

func TestCalendarCommand(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	seedWeek(t, cfg)

	out := mustRun(t, cfg, "calendar", "--view", "week", "--date", "2024-05-08")
	assertContains(t, out, "May 6 - May 12, 2024", "Mon May 6", "Álgebra", "Fri May 10", "Práctica 2", "Study time: 2h")

	out = mustRun(t, cfg, "calendar", "--view", "month", "--date", "2024-05-20")
	assertContains(t, out, "May 2024", "1h 30m", "★ May 10", "Práctica 2 · Física")

	if _, err := run(t, cfg, "calendar", "--view", "year"); err == nil {
		t.Error("unknown view accepted")
	}
}

func TestStatsCommands(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	seedWeek(t, cfg)

	out := mustRun(t, cfg, "stats")
	assertContains(t, out, "Álgebra", "1h 30m", "Física", "Estudio 30m", "Total", "2h")

	out = mustRun(t, cfg, "stats", "series", "--start", "2024-05-06", "--end", "2024-05-08", "--format", "csv")
	want := "date,total\n2024-05-06,90\n2024-05-07,120\n2024-05-08,120\n"
	if out != want {
		t.Errorf("csv series =\n%s\nwant\n%s", out, want)
	}

	out = mustRun(t, cfg, "stats", "series", "--start", "2024-05-06", "--end", "2024-05-08", "-s", "Álgebra", "--format", "csv")
	want = "date,total,Álgebra\n2024-05-06,90,90\n2024-05-07,90,90\n2024-05-08,90,90\n"
	if out != want {
		t.Errorf("csv series for one subject =\n%s\nwant\n%s", out, want)
	}

	if _, err := run(t, cfg, "stats", "series", "--start", "2024-05-08", "--end", "2024-05-06"); err == nil {
		t.Error("reversed range accepted")
	}
}

func TestStatsSeriesCopy(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	cfg := testConfig(t, config.DriverSQLite)
	seedWeek(t, cfg)

	out := mustRun(t, cfg, "stats", "series", "--start", "2024-05-06", "--end", "2024-05-07", "--format", "json", "--copy")
	if copied != out {
		t.Errorf("clipboard = %q, want the printed output %q", copied, out)
	}
	assertContains(t, copied, `"date": "2024-05-07"`, `"total": 120`)
}

type stubClient struct {
	insight llm.Insight
	err     error
}

func (s stubClient) Chat(context.Context, []llm.Message) (string, error) { return "", s.err }

func (s stubClient) ChatJSON(_ context.Context, _ []llm.Message, result any) error {
	if s.err != nil {
		return s.err
	}
	*result.(*llm.Insight) = s.insight
	return nil
}

func stubCoach(t *testing.T, client llm.Client) {
	t.Helper()
	orig := newCoach
	newCoach = func(context.Context, string, string, string) (*llm.Coach, error) {
		return llm.NewCoach(client), nil
	}
	t.Cleanup(func() { newCoach = orig })
}

func TestWeekCommand(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	seedWeek(t, cfg)

	t.Run("no insight", func(t *testing.T) {
		out := mustRun(t, cfg, "week", "--date", "2024-05-08", "--no-insight")
		assertContains(t, out,
			"WEEK: Mon May 6 - Sun May 12, 2024",
			"Total: 2h",
			"+2h vs previous week",
			"Active days: 2/7",
			"Busiest day: Monday",
			"SUBJECTS", "Álgebra", "Física",
		)
		if strings.Contains(out, "INSIGHT") {
			t.Error("insight printed with --no-insight")
		}
	})

	t.Run("with insight", func(t *testing.T) {
		stubCoach(t, stubClient{insight: llm.Insight{
			Theme:        "Strong start",
			Observations: []string{"Most of the time went to Álgebra on Monday."},
			NextWeek:     []string{"Give Física a second session."},
		}})
		out := mustRun(t, cfg, "week", "--date", "2024-05-08")
		assertContains(t, out, "INSIGHT", "THEME: Strong start", "• Most of the time", "➜ Give Física")
	})

	t.Run("coach failure falls back", func(t *testing.T) {
		stubCoach(t, stubClient{err: errors.New("offline")})
		out := mustRun(t, cfg, "week", "--date", "2024-05-08")
		assertContains(t, out, "WEEK: Mon May 6")
		if strings.Contains(out, "INSIGHT") {
			t.Error("insight printed after a coach error")
		}
	})

	t.Run("empty week skips coach", func(t *testing.T) {
		stubCoach(t, stubClient{err: errors.New("must not be called")})
		out := mustRun(t, cfg, "week", "--date", "2024-01-10")
		assertContains(t, out, "Total: 0m")
	})
}

func TestUnknownDriver(t *testing.T) {
	cfg := testConfig(t, "mongo")
	if _, err := run(t, cfg, "subject", "list"); err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Errorf("err = %v, want unknown storage driver", err)
	}
}
