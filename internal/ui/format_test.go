package ui

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ikersanz-debug/MyTracker/internal/config"
	"github.com/ikersanz-debug/MyTracker/internal/stats"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func TestStudyBar(t *testing.T) {
	tests := []struct {
		name          string
		minutes, most int
		want          string
	}{
		{"empty", 0, 100, "░░░░░░░░░░"},
		{"no maximum", 30, 0, "░░░░░░░░░░"},
		{"full", 100, 100, "██████████"},
		{"half", 50, 100, "█████░░░░░"},
		{"tiny still shows", 1, 100, "█░░░░░░░░░"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StudyBar(tt.minutes, tt.most, 10); got != tt.want {
				t.Errorf("StudyBar(%d, %d, 10) = %q, want %q", tt.minutes, tt.most, got, tt.want)
			}
		})
	}
}

func TestWrapWords(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 20, nil},
		{"one two three", 20, []string{"one two three"}},
		{"one two three four", 10, []string{"one two", "three four"}},
		{"supercalifragilistic word", 10, []string{"supercalifragilistic", "word"}},
		{"Física y Álgebra hoy", 10, []string{"Física y", "Álgebra", "hoy"}},
	}
	for _, tt := range tests {
		got := wrapWords(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapWords(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestParseInsightLine(t *testing.T) {
	tests := []struct {
		line       string
		prefix     string
		content    string
		wantHeader bool
	}{
		{"THEME: Consistency", "", "THEME: Consistency", true},
		{"NEXT WEEK:", "", "NEXT WEEK:", true},
		{"## Summary", "", "Summary", true},
		{"• Monday was strong", "    • ", "Monday was strong", false},
		{"- Review notes", "    • ", "Review notes", false},
		{"➜  Book the lab", "    ➜ ", "Book the lab", false},
		{"Plain text", "  ", "Plain text", false},
	}
	for _, tt := range tests {
		prefix, content, header := parseInsightLine(tt.line)
		if prefix != tt.prefix || content != tt.content || header != tt.wantHeader {
			t.Errorf("parseInsightLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, prefix, content, header, tt.prefix, tt.content, tt.wantHeader)
		}
	}
}

func TestPrintInsightWrapped(t *testing.T) {
	var buf bytes.Buffer
	printInsightWrapped(&buf, "THEME: Focus\n• one two three four five six\n\n➜  act", 20)
	want := "  THEME: Focus\n    • one two three\n      four five six\n\n    ➜ act\n"
	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Álgebra lineal", 10); got != "Álgebra..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestWriteSeries(t *testing.T) {
	series := stats.Series{
		Keys: []string{"subject_1"},
		Rows: []stats.Row{
			{Date: "2024-05-06", Total: 90, Subjects: map[string]int{"subject_1": 90}},
			{Date: "2024-05-07", Total: 150, Subjects: map[string]int{"subject_1": 90}},
		},
	}
	names := map[string]string{"subject_1": "Álgebra"}

	tests := []struct {
		format string
		want   []string
	}{
		{FormatCSV, []string{"date,total,Álgebra\n", "2024-05-07,150,90\n"}},
		{FormatJSON, []string{`"keys": [`, `"subject_1": 90`, `"total": 150`}},
		{FormatYAML, []string{"keys:\n  - subject_1\n", "- date: \"2024-05-06\"", "subject_1: 90"}},
		{FormatTable, []string{"Date", "Álgebra", "2024-05-07", "2h 30m", "1h 30m"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeSeries(&buf, series, tt.format, names); err != nil {
				t.Fatalf("writeSeries: %v", err)
			}
			assertContains(t, buf.String(), tt.want...)
		})
	}

	if err := writeSeries(&bytes.Buffer{}, series, "xml", names); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestConfigInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	t.Run("creates defaults and stops", func(t *testing.T) {
		var out bytes.Buffer
		if err := runConfigInteractive(&out, bufio.NewReader(strings.NewReader("n\n")), path); err != nil {
			t.Fatal(err)
		}
		assertContains(t, out.String(), "Created "+path, "[pomodoro]", "work_minutes                = 25")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("config file not created: %v", err)
		}
	})

	t.Run("edits values", func(t *testing.T) {
		answers := strings.Join([]string{
			"y",
			"bolt",  // driver
			"",      // db path
			"",      // user
			"abc",   // invalid work minutes
			"50",    // work minutes
			"",      // short break
			"",      // long break
			"",      // intervals
			"false", // notify
			"month", // view
			"",      // provider
			"",      // model
			"",      // base url
			"latte", // theme
		}, "\n") + "\n"

		var out bytes.Buffer
		if err := runConfigInteractive(&out, bufio.NewReader(strings.NewReader(answers)), path); err != nil {
			t.Fatal(err)
		}
		assertContains(t, out.String(), `Invalid number "abc"`, "Configuration saved!")

		cfg, err := config.LoadFrom(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Storage.Driver != config.DriverBolt || cfg.Pomodoro.WorkMinutes != 50 ||
			cfg.Pomodoro.Notify || cfg.Calendar.DefaultView != "month" || cfg.UI.Theme != "latte" {
			t.Errorf("saved config = %+v", cfg)
		}
	})
}
