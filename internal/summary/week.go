// Package summary builds the weekly study summary shared by the CLI and TUI.
package summary

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/llm"
	"github.com/ikersanz-debug/MyTracker/internal/stats"
	"github.com/ikersanz-debug/MyTracker/internal/store"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

// WeekSummary holds aggregated week data and optional insight.
type WeekSummary struct {
	Start    time.Time
	End      time.Time
	Days     []stats.DayTotal
	Subjects []stats.SubjectTotal
	Events   []timeline.Activity // events dated inside the week, by date
	Current  stats.Summary
	Previous stats.Summary
	Insight  *llm.Insight
}

// Comparison describes the change against the previous week.
func (w *WeekSummary) Comparison() string {
	return stats.CompareTotals(w.Current.TotalMinutes, w.Previous.TotalMinutes)
}

// Options configures BuildWeekSummary.
type Options struct {
	WeekOf time.Time // any day of the week; zero means this week
	Now    time.Time // zero means time.Now()

	// Coach, when set, is asked for an insight on weeks with recorded time.
	Coach *llm.Coach
}

// SummarizeWeek builds the summary of the week containing weekOf from a
// snapshot. The week runs Monday to Sunday.
func SummarizeWeek(snap store.Snapshot, weekOf time.Time) *WeekSummary {
	start, end := dateutil.WeekRange(weekOf)
	prevStart, prevEnd := dateutil.AddDays(start, -7), dateutil.AddDays(start, -1)

	inWeek := make([]*study.Session, 0, len(snap.Sessions))
	for _, s := range snap.Sessions {
		d := dateutil.Normalize(s.Date)
		if !d.Before(start) && !d.After(end) {
			inWeek = append(inWeek, s)
		}
	}

	var events []timeline.Activity
	for _, a := range timeline.Merge(snap.Subjects, nil) {
		if !a.Date.Before(start) && !a.Date.After(end) {
			events = append(events, a)
		}
	}
	slices.SortStableFunc(events, func(x, y timeline.Activity) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		return strings.Compare(x.Label, y.Label)
	})

	return &WeekSummary{
		Start:    start,
		End:      end,
		Days:     stats.DailyMinutes(inWeek, start, end),
		Subjects: stats.SubjectTotals(snap.Subjects, inWeek),
		Events:   events,
		Current:  stats.Summarize(snap.Sessions, start, end),
		Previous: stats.Summarize(snap.Sessions, prevStart, prevEnd),
	}
}

// BuildWeekSummary summarizes the requested week and, when a coach is
// configured and the week has recorded time, adds its insight.
func BuildWeekSummary(ctx context.Context, snap store.Snapshot, opts Options) (*WeekSummary, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	weekOf := opts.WeekOf
	if weekOf.IsZero() {
		weekOf = now
	}

	summary := SummarizeWeek(snap, weekOf)
	if opts.Coach == nil || summary.Current.TotalMinutes == 0 {
		return summary, nil
	}

	insight, err := opts.Coach.WeeklyInsight(ctx, llm.WeekData{
		Start:           summary.Start,
		End:             summary.End,
		Days:            summary.Days,
		Subjects:        summary.Subjects,
		Upcoming:        summary.Upcoming(now),
		PreviousMinutes: summary.Previous.TotalMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating week: %w", err)
	}
	summary.Insight = &insight
	return summary, nil
}

// Upcoming returns the week's events dated today or later.
func (w *WeekSummary) Upcoming(now time.Time) []timeline.Activity {
	today := dateutil.Normalize(now)
	var out []timeline.Activity
	for _, e := range w.Events {
		if !e.Date.Before(today) {
			out = append(out, e)
		}
	}
	return out
}

// BusiestDay returns the day with the most minutes. ok is false when the
// week has no recorded time.
func (w *WeekSummary) BusiestDay() (day stats.DayTotal, ok bool) {
	if len(w.Days) == 0 {
		return stats.DayTotal{}, false
	}
	// MaxFunc keeps the first maximum, so the earlier day wins ties.
	best := slices.MaxFunc(w.Days, func(x, y stats.DayTotal) int {
		return cmp.Compare(x.Minutes, y.Minutes)
	})
	return best, best.Minutes > 0
}
