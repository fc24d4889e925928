package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ikersanz-debug/MyTracker/internal/tui/theme"
)

// minCellWidth is the narrowest calendar column that still fits "1h 30m".
const minCellWidth = 9

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle      lipgloss.Style
	TabStyle        lipgloss.Style
	TabActiveStyle  lipgloss.Style
	DayHeaderStyle  lipgloss.Style
	CellStyle       lipgloss.Style
	CellTodayStyle  lipgloss.Style
	CellBlankStyle  lipgloss.Style
	StudyStyle      lipgloss.Style
	EventStyle      lipgloss.Style
	MutedStyle      lipgloss.Style
	ClockStyle      lipgloss.Style
	PhaseWorkStyle  lipgloss.Style
	PhaseBreakStyle lipgloss.Style
	StatusStyle     lipgloss.Style
	ErrorStyle      lipgloss.Style
	PromptStyle     lipgloss.Style
	AppStyle        lipgloss.Style
	PanelStyle      lipgloss.Style
	PanelTitleStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	s.TabStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(p.FgMuted)
	s.TabActiveStyle = s.TabStyle.
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Accent)

	s.DayHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Fg).Align(lipgloss.Center)
	s.CellStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(p.BgSelection).
		Foreground(p.Fg).
		Padding(0, 1)
	s.CellTodayStyle = s.CellStyle.BorderForeground(p.Today)
	s.CellBlankStyle = s.CellStyle.Foreground(p.FgMuted).BorderForeground(p.BgHighlight)

	s.StudyStyle = lipgloss.NewStyle().Foreground(p.Study)
	s.EventStyle = lipgloss.NewStyle().Foreground(p.Event).Bold(true)
	s.MutedStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	s.ClockStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Fg).Padding(1, 4)
	s.PhaseWorkStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Study)
	s.PhaseBreakStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Break)

	s.StatusStyle = lipgloss.NewStyle().Foreground(p.FgMuted).Italic(true)
	s.ErrorStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)
	s.PromptStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1)

	s.AppStyle = lipgloss.NewStyle().Padding(0, 1)
	s.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BgSelection).
		Padding(0, 1)
	s.PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	return s
}

// SubjectStyle colors text with a subject's own color. Invalid colors fall
// back to the study color.
func (s *Styles) SubjectStyle(hex string) lipgloss.Style {
	if !theme.IsHexColor(hex) {
		return s.StudyStyle
	}
	return lipgloss.NewStyle().
		Foreground(s.palette.TextOn(hex)).
		Background(lipgloss.Color(hex))
}

// Palette returns the colors the styles were built from.
func (s *Styles) Palette() *theme.Palette {
	return s.palette
}
