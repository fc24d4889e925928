package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Study time: bold green
	colorStudy = color.New(color.FgGreen, color.Bold)

	// Exams, deadlines and non-study sessions: magenta
	colorEvent = color.New(color.FgMagenta)

	// Insight/results: yellow to make it pop
	colorInsight = color.New(color.FgYellow)

	colorHeader = color.New(color.Bold)

	// Totals and positive changes
	colorStats = color.New(color.FgCyan)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatStudy(s string) string   { return colorStudy.Sprint(s) }
func formatEvent(s string) string   { return colorEvent.Sprint(s) }
func formatInsight(s string) string { return colorInsight.Sprint(s) }
func formatHeader(s string) string  { return colorHeader.Sprint(s) }
func formatStats(s string) string   { return colorStats.Sprint(s) }
func formatMuted(s string) string   { return colorMuted.Sprint(s) }
