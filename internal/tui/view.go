package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

const (
	monthCellLines = 3
	maxWeekLines   = 8
	maxTodos       = 6
)

// View renders the TUI.
func (m Model) View() string {
	sections := []string{m.renderHeader()}
	if m.tab == TabPomodoro {
		sections = append(sections, m.renderPomodoro())
	} else {
		sections = append(sections, m.renderCalendar())
	}
	if m.prompted {
		sections = append(sections, m.styles.PromptStyle.Render(m.prompt.View()))
	}
	if m.status != "" && m.now().Before(m.statusUntil) {
		style := m.styles.StatusStyle
		if m.statusErr {
			style = m.styles.ErrorStyle
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys.forTab(m.tab, m.prompted)))
	return m.styles.AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	tabs := []string{m.styles.TitleStyle.Render("MyTracker ")}
	for _, t := range []Tab{TabCalendar, TabPomodoro} {
		style := m.styles.TabStyle
		if t == m.tab {
			style = m.styles.TabActiveStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

// cellWidth returns the content width of one calendar column.
func (m Model) cellWidth() int {
	if m.width <= 0 {
		return minCellWidth
	}
	// 2 columns of border per cell, 2 of app padding.
	return max((m.width-2)/7-2, minCellWidth)
}

func (m Model) renderCalendar() string {
	g := m.grid()
	title := m.styles.PanelTitleStyle.Render(m.nav.Title()) +
		m.styles.MutedStyle.Render("  ·  "+string(g.View))

	var body string
	switch g.View {
	case calendar.ViewMonthly:
		body = m.renderMonth(g)
	case calendar.ViewDaily:
		body = m.renderDay(g)
	default:
		body = m.renderWeek(g)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m Model) weekdayHeader(w int) string {
	names := make([]string, 7)
	for i := range names {
		names[i] = m.styles.DayHeaderStyle.Width(w + 2).Render(dateutil.WeekdayShortName(i))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, names...)
}

func (m Model) renderMonth(g calendar.Grid) string {
	w := m.cellWidth()
	rows := []string{m.weekdayHeader(w)}
	for _, week := range g.Rows() {
		cells := make([]string, len(week))
		for i, c := range week {
			cells[i] = m.renderMonthCell(c, w)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) cellStyle(c calendar.Cell, w, h int) lipgloss.Style {
	style := m.styles.CellStyle
	switch {
	case c.Blank:
		style = m.styles.CellBlankStyle
	case c.IsToday:
		style = m.styles.CellTodayStyle
	}
	return style.Width(w).Height(h)
}

func (m Model) renderMonthCell(c calendar.Cell, w int) string {
	if c.Blank {
		return m.cellStyle(c, w, monthCellLines).Render("")
	}
	lines := []string{fmt.Sprintf("%d", c.Date.Day())}
	if mins := c.StudyMinutes(); mins > 0 {
		lines = append(lines, m.styles.StudyStyle.Render(truncate(study.FormatMinutes(mins), w)))
	}
	switch n := len(c.Events); {
	case n == 1:
		lines = append(lines, m.styles.EventStyle.Render(truncate("★ "+c.Events[0].Label, w)))
	case n > 1:
		lines = append(lines, m.styles.EventStyle.Render(fmt.Sprintf("★ %d events", n)))
	}
	return m.cellStyle(c, w, monthCellLines).Render(strings.Join(lines, "\n"))
}

func (m Model) renderWeek(g calendar.Grid) string {
	w := m.cellWidth()
	height := 1
	for _, c := range g.Cells {
		height = max(height, min(len(c.Activities), maxWeekLines)+1)
	}

	cols := make([]string, len(g.Cells))
	for i, c := range g.Cells {
		lines := []string{m.styles.DayHeaderStyle.Render(c.Date.Format("Mon 2"))}
		for j, a := range c.Activities {
			if j == maxWeekLines-1 && len(c.Activities) > maxWeekLines {
				lines = append(lines, m.styles.MutedStyle.Render(fmt.Sprintf("+%d more", len(c.Activities)-j)))
				break
			}
			lines = append(lines, m.activityLine(a, w))
		}
		cols[i] = m.cellStyle(c, w, height).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) activityLine(a timeline.Activity, w int) string {
	if a.Kind == timeline.KindEvent {
		return m.styles.EventStyle.Render(truncate("★ "+a.Label, w))
	}
	text := study.FormatMinutes(a.Minutes) + " " + a.Label
	if !a.IsStudy() {
		return m.styles.EventStyle.Render(truncate("• "+text, w))
	}
	return m.styles.StudyStyle.Render(truncate("• "+text, w))
}

func (m Model) renderDay(g calendar.Grid) string {
	c := g.Cells[0]
	if len(c.Activities) == 0 {
		return m.styles.PanelStyle.Render(m.styles.MutedStyle.Render("Nothing recorded for this day."))
	}

	var lines []string
	for _, a := range c.Activities {
		if a.Kind == timeline.KindEvent {
			label := a.Label
			if a.SubjectName != "" && a.Label != a.SubjectName {
				label += " · " + a.SubjectName
			}
			lines = append(lines, m.styles.EventStyle.Render(fmt.Sprintf("★ %-11s", study.DateType(a.Type).Label()))+" "+label)
			continue
		}
		span := "           "
		if s := a.Session; s != nil && s.HasTimeRange() {
			span = fmt.Sprintf("%s-%s", s.StartTime, s.EndTime)
		}
		subject := a.SubjectName
		if subject == "" {
			subject = "(no subject)"
		}
		row := fmt.Sprintf("%s  %-8s %s", span, study.FormatMinutes(a.Minutes), subject)
		if a.Session != nil && a.Session.Description != "" && a.Session.Description != subject {
			row += m.styles.MutedStyle.Render("  " + a.Session.Description)
		}
		style := m.styles.StudyStyle
		if !a.IsStudy() {
			style = m.styles.EventStyle
		}
		lines = append(lines, style.Render("• ")+row)
	}
	lines = append(lines, "", m.styles.MutedStyle.Render("Study time: "+study.FormatMinutes(c.StudyMinutes())))
	return m.styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPomodoro() string {
	st := m.pomo
	phaseStyle := m.styles.PhaseWorkStyle
	if st.Phase.IsBreak() {
		phaseStyle = m.styles.PhaseBreakStyle
	}
	state := "Paused"
	if st.Running {
		state = "Running"
	}

	lines := []string{
		phaseStyle.Render(st.Phase.String()) + m.styles.MutedStyle.Render("  "+state),
		m.styles.ClockStyle.Render(st.Clock()),
		m.bar.ViewAs(st.Progress()),
		"",
		fmt.Sprintf("Completed: %d %s", st.Completed, strings.Repeat("●", st.Completed%st.Settings.IntervalsBeforeLongBreak)),
		m.styles.MutedStyle.Render(fmt.Sprintf("%dm work · %dm short · %dm long · long break every %d",
			st.Settings.WorkMinutes, st.Settings.ShortBreakMinutes, st.Settings.LongBreakMinutes, st.Settings.IntervalsBeforeLongBreak)),
	}
	if st.Message != "" {
		lines = append(lines, m.styles.ErrorStyle.Render(st.Message))
	}
	timer := m.styles.PanelStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, timer, " ", m.renderToday())
}

// renderToday lists today's study time and the open to-dos.
func (m Model) renderToday() string {
	today := m.now()
	minutes := 0
	for _, s := range m.snap.Sessions {
		if dateutil.SameDay(s.Date, today) {
			minutes += s.Duration
		}
	}

	lines := []string{
		m.styles.PanelTitleStyle.Render("Today"),
		m.styles.StudyStyle.Render(study.FormatMinutes(minutes)) + " studied",
		"",
		m.styles.PanelTitleStyle.Render("To-do"),
	}
	open := 0
	for _, td := range m.snap.Todos {
		if td.Done {
			continue
		}
		open++
		if open > maxTodos {
			continue
		}
		line := "○ " + td.Text
		if td.DueDate != "" {
			line += m.styles.MutedStyle.Render(" (" + td.DueDate + ")")
		}
		lines = append(lines, line)
	}
	switch {
	case open == 0:
		lines = append(lines, m.styles.MutedStyle.Render("All done"))
	case open > maxTodos:
		lines = append(lines, m.styles.MutedStyle.Render(fmt.Sprintf("+%d more", open-maxTodos)))
	}
	return m.styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most w runes, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return s
	}
	return ansi.Truncate(s, w, "…")
}
