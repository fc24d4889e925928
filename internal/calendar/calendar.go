// Package calendar lays timeline activities out on daily, weekly and
// monthly grids and keeps track of the period being viewed.
package calendar

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

// View is the span of time a grid covers.
type View string

const (
	ViewDaily   View = "day"
	ViewWeekly  View = "week"
	ViewMonthly View = "month"
)

// ErrInvalidView is returned by ParseView for unknown names.
var ErrInvalidView = errors.New("view must be one of day, week, month")

// ParseView accepts day/week/month and their -ly forms.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "d":
		return ViewDaily, nil
	case "week", "weekly", "w", "":
		return ViewWeekly, nil
	case "month", "monthly", "m":
		return ViewMonthly, nil
	default:
		return "", ErrInvalidView
	}
}

// Cell is one day of a grid. Blank cells pad the first week of a month and
// carry no date or activities.
type Cell struct {
	Date       time.Time
	Blank      bool
	IsToday    bool
	Activities []timeline.Activity
	Sessions   []timeline.Activity // study and pomodoro sessions
	Events     []timeline.Activity // everything else
}

// StudyMinutes returns the minutes of study recorded on the day.
func (c Cell) StudyMinutes() int {
	total := 0
	for _, a := range c.Sessions {
		total += a.Minutes
	}
	return total
}

// Grid is the result of Build.
type Grid struct {
	View      View
	Reference time.Time
	Cells     []Cell
}

// Days returns the non-blank cells.
func (g Grid) Days() []Cell {
	out := make([]Cell, 0, len(g.Cells))
	for _, c := range g.Cells {
		if !c.Blank {
			out = append(out, c)
		}
	}
	return out
}

// Rows splits the cells into Monday-first weeks. The last row may be short.
func (g Grid) Rows() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		rows = append(rows, g.Cells[i:min(i+7, len(g.Cells))])
	}
	return rows
}

// Build lays out the activities for the period of view containing ref.
// Monthly grids start with the blanks needed to put day 1 under its
// weekday; weekly grids hold Monday through Sunday; daily grids one cell.
func Build(ref time.Time, view View, activities []timeline.Activity, now time.Time) Grid {
	ref = dateutil.Normalize(ref)
	today := dateutil.Normalize(now)

	byDay := make(map[string][]timeline.Activity)
	for _, a := range activities {
		key := dateutil.FormatISODate(a.Date)
		byDay[key] = append(byDay[key], a)
	}

	newCell := func(d time.Time) Cell {
		c := Cell{Date: d, IsToday: d.Equal(today)}
		acts := byDay[dateutil.FormatISODate(d)]
		if len(acts) == 0 {
			return c
		}
		c.Activities = slices.Clone(acts)
		slices.SortStableFunc(c.Activities, compareActivities)
		for _, a := range c.Activities {
			if a.IsStudy() {
				c.Sessions = append(c.Sessions, a)
			} else {
				c.Events = append(c.Events, a)
			}
		}
		return c
	}

	g := Grid{View: view, Reference: ref}
	switch view {
	case ViewMonthly:
		first := dateutil.StartOfMonth(ref)
		blanks := dateutil.LeadingBlanks(dateutil.FirstWeekdayOfMonth(ref))
		days := dateutil.DaysInMonth(ref)
		g.Cells = make([]Cell, 0, blanks+days)
		for range blanks {
			g.Cells = append(g.Cells, Cell{Blank: true})
		}
		for i := range days {
			g.Cells = append(g.Cells, newCell(dateutil.AddDays(first, i)))
		}
	case ViewDaily:
		g.Cells = []Cell{newCell(ref)}
	default:
		g.View = ViewWeekly
		monday := dateutil.StartOfWeek(ref)
		g.Cells = make([]Cell, 0, 7)
		for i := range 7 {
			g.Cells = append(g.Cells, newCell(dateutil.AddDays(monday, i)))
		}
	}
	return g
}

// compareActivities orders sessions before events, then by start time and
// label, so cells render the same way on every refresh.
func compareActivities(a, b timeline.Activity) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if sa, sb := startOf(a), startOf(b); sa != sb {
		return strings.Compare(sa, sb)
	}
	return strings.Compare(a.Label, b.Label)
}

func startOf(a timeline.Activity) string {
	if a.Session != nil {
		return a.Session.StartTime
	}
	return ""
}

// Navigator holds the period on screen and moves it.
type Navigator struct {
	Reference time.Time
	View      View
}

// NewNavigator returns a navigator positioned on now.
func NewNavigator(view View, now time.Time) *Navigator {
	if view == "" {
		view = ViewWeekly
	}
	return &Navigator{Reference: dateutil.Normalize(now), View: view}
}

// Next moves one period forward. Months land on day 1 so that short months
// never skip ahead.
func (n *Navigator) Next() { n.step(1) }

// Prev moves one period back.
func (n *Navigator) Prev() { n.step(-1) }

func (n *Navigator) step(dir int) {
	switch n.View {
	case ViewMonthly:
		n.Reference = dateutil.AddMonths(n.Reference, dir)
	case ViewDaily:
		n.Reference = dateutil.AddDays(n.Reference, dir)
	default:
		n.Reference = dateutil.AddDays(n.Reference, 7*dir)
	}
}

// Today jumps back to the period containing now.
func (n *Navigator) Today(now time.Time) {
	n.Reference = dateutil.Normalize(now)
}

// SetView changes the view and keeps the reference date.
func (n *Navigator) SetView(v View) {
	n.View = v
}

// Grid builds the grid for the current position.
func (n *Navigator) Grid(activities []timeline.Activity, now time.Time) Grid {
	return Build(n.Reference, n.View, activities, now)
}

// Title returns a header for the current period.
func (n *Navigator) Title() string {
	ref := n.Reference
	switch n.View {
	case ViewMonthly:
		return dateutil.MonthName(ref)
	case ViewDaily:
		return ref.Format("Monday, January 2 2006")
	default:
		monday, sunday := dateutil.WeekRange(ref)
		if monday.Year() != sunday.Year() {
			return fmt.Sprintf("%s - %s", monday.Format("Jan 2, 2006"), sunday.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s", monday.Format("Jan 2"), sunday.Format("Jan 2, 2006"))
	}
}
