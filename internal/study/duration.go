package study

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const clockLayout = "15:04"

// DurationInput is everything a session form offers for deriving its length.
type DurationInput struct {
	Date      time.Time // day the session happened; zero means today
	Minutes   string    // free-text minutes, used when no time range is given
	StartTime string    // "HH:MM"
	EndTime   string    // "HH:MM"
}

// ResolveDuration derives a session length in minutes. A valid start/end
// pair wins; an end earlier than the start is read as the next day, so
// 23:30 to 00:15 is 45 minutes. Without a usable pair the Minutes text is
// parsed leniently. The result is never negative.
func ResolveDuration(in DurationInput) int {
	if start, end, ok := clockRange(in.Date, in.StartTime, in.EndTime); ok {
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}
		return int(math.Round(end.Sub(start).Minutes()))
	}
	return ParseMinutes(in.Minutes)
}

func clockRange(day time.Time, start, end string) (time.Time, time.Time, bool) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, false
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if ValidateClock(start) != nil || ValidateClock(end) != nil {
		return time.Time{}, time.Time{}, false
	}
	s, _ := time.Parse(clockLayout, start)
	e, _ := time.Parse(clockLayout, end)
	if day.IsZero() {
		day = time.Now()
	}
	day = day.In(time.Local)
	at := func(c time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, time.Local)
	}
	return at(s), at(e), true
}

// ParseMinutes reads a leading run of digits as minutes, the way form
// fields are read. Anything else, including negative numbers, yields 0.
func ParseMinutes(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// ValidateClock checks that s is a 24-hour "HH:MM" time.
func ValidateClock(s string) error {
	if len(s) != 5 {
		return ErrInvalidTimeFormat
	}
	if _, err := time.Parse(clockLayout, s); err != nil {
		return ErrInvalidTimeFormat
	}
	return nil
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if ValidateClock(t) != nil {
		return 0
	}
	c, err := time.Parse(clockLayout, t)
	if err != nil {
		return 0
	}
	return c.Hour()*60 + c.Minute()
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatMinutes renders a minute count as "1h 30m", "45m" or "2h".
func FormatMinutes(m int) string {
	if m <= 0 {
		return "0m"
	}
	h, rest := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, rest)
	}
}
