package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// StudyBar draws minutes as a share of maxMinutes in width cells.
func StudyBar(minutes, maxMinutes, width int) string {
	if maxMinutes <= 0 || minutes <= 0 {
		return strings.Repeat("░", width)
	}
	filled := min(minutes*width/maxMinutes, width)
	if filled == 0 {
		filled = 1
	}
	return formatStudy(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	return study.FormatMinutes(minutes)
}

// printInsightWrapped prints coach output, wrapping long lines to width
// and keeping bullets and headers readable.
func printInsightWrapped(w io.Writer, text string, width int) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, isHeader := parseInsightLine(trimmed)
		if isHeader {
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		indent := strings.Repeat(" ", utf8.RuneCountInString(prefix))
		for i, l := range wrapWords(content, width-utf8.RuneCountInString(prefix)) {
			p := prefix
			if i > 0 {
				p = indent
			}
			fmt.Fprintln(w, formatInsight(p+l))
		}
	}
}

// parseInsightLine splits a line into its bullet prefix and content.
func parseInsightLine(trimmed string) (prefix, content string, isHeader bool) {
	switch {
	case strings.HasPrefix(trimmed, "THEME:"):
		return "", trimmed, true
	case strings.HasSuffix(trimmed, ":") && strings.ToUpper(trimmed) == trimmed:
		return "", trimmed, true
	case strings.HasPrefix(trimmed, "#"):
		return "", strings.TrimLeft(trimmed, "# "), true
	case strings.HasPrefix(trimmed, "• "):
		return "    • ", strings.TrimPrefix(trimmed, "• "), false
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		return "    • ", trimmed[2:], false
	case strings.HasPrefix(trimmed, "➜"):
		return "    ➜ ", strings.TrimSpace(strings.TrimPrefix(trimmed, "➜")), false
	}
	return "  ", trimmed, false
}

// wrapWords breaks text into lines of at most width runes. A single word
// longer than width gets a line of its own.
func wrapWords(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	width = max(width, 10)

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	if width <= 3 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// rule returns a horizontal separator fitted to the terminal.
func rule() string {
	return strings.Repeat("─", min(termWidth(), 74))
}
