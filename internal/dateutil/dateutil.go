// Package dateutil provides the calendar math shared by the planner:
// day normalization, week and month boundaries and date parsing.
package dateutil

import (
	"errors"
	"iter"
	"strings"
	"time"
)

// ISODate is the layout used for every date-only value.
const ISODate = "2006-01-02"

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange represents a validated, inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDate(endDate)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days in the range, both ends included.
func (r *DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether t falls on a day inside the range.
func (r *DateRange) Contains(t time.Time) bool {
	d := Normalize(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// ParseDate parses a YYYY-MM-DD string as the start of that local day.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Normalize(time.Now()), nil
	}
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return DayStart(t.Date()), nil
}

// DayStart returns the first local instant of the calendar day y-m-d.
// Out-of-range fields roll over as in time.Date. That instant is usually
// midnight; where a DST change skips midnight it is the first hour that
// exists on the day, never a time on the previous day.
func DayStart(y int, m time.Month, d int) time.Time {
	y, m, d = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	for i := 0; i < 4 && t.Day() != d; i++ {
		t = time.Date(y, m, d, i+1, 0, 0, 0, time.Local)
	}
	return t
}

// Normalize returns the start of t's local calendar day. It is the
// bucketing key for every per-day grouping, and normalizing twice is a
// no-op.
func Normalize(t time.Time) time.Time {
	return DayStart(t.In(time.Local).Date())
}

// AddDays returns the start of the local day n days after t's day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(time.Local).Date()
	return DayStart(y, m, d+n)
}

// AddMonths returns the first day of the month n months after t's month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, _ := t.In(time.Local).Date()
	return DayStart(y, m+time.Month(n), 1)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// FormatISODate renders t as YYYY-MM-DD using local calendar fields.
func FormatISODate(t time.Time) string {
	return t.In(time.Local).Format(ISODate)
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = Normalize(t)
	weekday := int(t.Weekday())
	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	return AddDays(t, offset)
}

// WeekRange returns the Monday and Sunday of the week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	monday = StartOfWeek(t)
	return monday, AddDays(monday, 6)
}

// StartOfMonth returns the start of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return AddMonths(t, 0)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	// Day 0 of the next month is the last day of this one.
	y, m, _ := t.In(time.Local).Date()
	return time.Date(y, m+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOfMonth returns the weekday of the first day of t's month,
// 0=Sunday through 6=Saturday.
func FirstWeekdayOfMonth(t time.Time) int {
	return int(StartOfMonth(t).Weekday())
}

// LeadingBlanks converts a Sunday-first weekday into the number of blank
// cells before day 1 in a Monday-first month grid.
func LeadingBlanks(firstWeekday int) int {
	if firstWeekday == 0 {
		return 6
	}
	return firstWeekday - 1
}

// DaysBetween returns the whole number of calendar days from a to b.
// Counting by calendar fields keeps DST transitions from skewing the result.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Days yields the start of every calendar day from start to end
// inclusive, in order. Days are counted by calendar fields so each one
// appears exactly once across DST changes.
func Days(start, end time.Time) iter.Seq[time.Time] {
	n := DaysBetween(start, end)
	return func(yield func(time.Time) bool) {
		for i := 0; i <= n; i++ {
			if !yield(AddDays(start, i)) {
				return
			}
		}
	}
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday", "next-week"
//   - Last prefixed: "last-monday" through "last-sunday" (previous occurrence)
//
// All inputs are case-insensitive. Past dates are accepted since study
// sessions are usually logged after they happen.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := Normalize(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return AddDays(today, 1), nil
	case "yesterday":
		return AddDays(today, -1), nil
	case "next-week":
		return AddDays(today, 7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return nextWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if name, ok := strings.CutPrefix(input, "last-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return previousWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	return ParseDate(input)
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return AddDays(today, daysUntil)
}

// previousWeekday returns the last occurrence of the given weekday before today.
func previousWeekday(today time.Time, target time.Weekday) time.Time {
	daysAgo := int(today.Weekday()) - int(target)
	if daysAgo <= 0 {
		daysAgo += 7
	}
	return AddDays(today, -daysAgo)
}

var (
	weekdayNames      = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	weekdayShortNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayNames[weekday]
}

// WeekdayShortName returns the short name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayShortNames[weekday]
}

// WeekdayIndex returns t's position in a Monday-first week (0=Monday).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MonthName returns the English month name of t, e.g. "May 2024".
func MonthName(t time.Time) string {
	return t.In(time.Local).Format("January 2006")
}
