package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/calendar"
	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

const monthColumn = 10

func (a *App) calendarCmd() *cobra.Command {
	var view, date string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Print the calendar of sessions and important dates",
		Example: `  mytracker calendar
  mytracker calendar --view month --date 2024-05-01
  mytracker cal --view day --date yesterday`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if view == "" {
				view = a.config.Calendar.DefaultView
			}
			v, err := calendar.ParseView(view)
			if err != nil {
				return err
			}
			now := time.Now()
			ref, err := dateutil.ParseRelativeDate(date, now)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			g := st.Calendar(ref, v, now)
			nav := calendar.Navigator{Reference: ref, View: v}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\n  %s\n", formatHeader(nav.Title()))
			fmt.Fprintln(w, rule())
			switch v {
			case calendar.ViewMonthly:
				printMonth(w, g)
			default:
				printDays(w, g)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "View: day, week or month (default from config)")
	cmd.Flags().StringVar(&date, "date", "", "Any date in the period (YYYY-MM-DD or relative, default: today)")
	return cmd
}

// printMonth prints one row of day numbers and one of study time per week.
// A star marks days with events.
func printMonth(w io.Writer, g calendar.Grid) {
	var header strings.Builder
	for i := range 7 {
		fmt.Fprintf(&header, "%-*s", monthColumn, dateutil.WeekdayShortName(i))
	}
	fmt.Fprintln(w, "  "+formatMuted(strings.TrimRight(header.String(), " ")))

	for _, week := range g.Rows() {
		var days, minutes strings.Builder
		for _, c := range week {
			if c.Blank {
				days.WriteString(strings.Repeat(" ", monthColumn))
				minutes.WriteString(strings.Repeat(" ", monthColumn))
				continue
			}
			day := fmt.Sprintf("%2d", c.Date.Day())
			if c.IsToday {
				day = formatHeader(day)
			}
			mark := "  "
			if len(c.Events) > 0 {
				mark = " " + formatEvent("★")
			}
			days.WriteString(day + mark + strings.Repeat(" ", monthColumn-4))

			m := ""
			if mins := c.StudyMinutes(); mins > 0 {
				m = FormatDuration(mins)
			}
			minutes.WriteString(formatStudy(fmt.Sprintf("%-*s", monthColumn, m)))
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(days.String(), " "))
		fmt.Fprintln(w, "  "+strings.TrimRight(minutes.String(), " "))
	}

	events := 0
	for _, c := range g.Days() {
		events += len(c.Events)
	}
	if events > 0 {
		fmt.Fprintln(w)
		for _, c := range g.Days() {
			for _, e := range c.Events {
				fmt.Fprintf(w, "  %s %s  %s\n", formatEvent("★"), c.Date.Format("Jan 2"), eventLabel(e))
			}
		}
	}
}

// printDays prints every day of a weekly or daily grid with its activities.
func printDays(w io.Writer, g calendar.Grid) {
	total := 0
	for _, c := range g.Days() {
		header := c.Date.Format("Mon Jan 2")
		if c.IsToday {
			header += " (today)"
		}
		fmt.Fprintf(w, "  %s\n", formatHeader(header))
		if len(c.Activities) == 0 {
			fmt.Fprintf(w, "    %s\n", formatMuted("-"))
			continue
		}
		for _, a := range c.Activities {
			fmt.Fprintf(w, "    %s\n", activityLine(a))
		}
		total += c.StudyMinutes()
	}
	fmt.Fprintln(w, rule())
	fmt.Fprintf(w, "  Study time: %s\n", formatStats(FormatDuration(total)))
}

func activityLine(a timeline.Activity) string {
	if a.Kind == timeline.KindEvent {
		return formatEvent("★ "+study.DateType(a.Type).Label()) + "  " + eventLabel(a)
	}
	span := "           "
	if s := a.Session; s != nil && s.HasTimeRange() {
		span = s.StartTime + "-" + s.EndTime
	}
	duration := fmt.Sprintf("%7s", FormatDuration(a.Minutes))
	if a.IsStudy() {
		duration = formatStudy(duration)
	} else {
		duration = formatEvent(duration)
	}
	return fmt.Sprintf("%s  %s  %s", span, duration, a.Label)
}

func eventLabel(a timeline.Activity) string {
	if a.SubjectName != "" && !strings.Contains(a.Label, a.SubjectName) {
		return a.Label + formatMuted(" · "+a.SubjectName)
	}
	return a.Label
}
