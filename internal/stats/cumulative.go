package stats

import (
	"slices"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// SeriesKey names the per-subject column of a series row.
func SeriesKey(subjectID string) string {
	return "subject_" + subjectID
}

// CumulativeOptions selects the range and subjects of a cumulative series.
type CumulativeOptions struct {
	Start string // YYYY-MM-DD, empty means today
	End   string // YYYY-MM-DD, empty means Start

	// SubjectIDs restricts the series to these subjects. Empty, or a list
	// that covers every entry of AllSubjectIDs, selects everything and
	// produces only the combined total.
	SubjectIDs    []string
	AllSubjectIDs []string
}

// Row is one day of a cumulative series. Every value is the running total
// up to and including Date.
type Row struct {
	Date     string         `json:"date" yaml:"date"`
	Total    int            `json:"total" yaml:"total"`
	Subjects map[string]int `json:"subjects,omitempty" yaml:"subjects,omitempty"`
}

// Series is a cumulative, forward-filled, per-day study time series.
type Series struct {
	Keys []string `json:"keys,omitempty" yaml:"keys,omitempty"` // per-subject columns, in selection order
	Rows []Row    `json:"rows" yaml:"rows"`
}

// Cumulative builds the running totals for every day of the range. Days
// without sessions repeat the previous day's values, so the series has
// exactly one row per day and never decreases.
func Cumulative(sessions []*study.Session, opts CumulativeOptions) (Series, error) {
	r, err := dateutil.NewDateRange(opts.Start, opts.End)
	if err != nil {
		return Series{}, err
	}

	selected := selection(opts.SubjectIDs, opts.AllSubjectIDs)

	type day struct {
		total    int
		subjects map[string]int
	}
	perDay := make(map[string]*day)
	for _, s := range sessions {
		if !r.Contains(s.Date) {
			continue
		}
		if selected != nil && !selected[s.SubjectID] {
			continue
		}
		key := dateutil.FormatISODate(s.Date)
		d, ok := perDay[key]
		if !ok {
			d = &day{subjects: make(map[string]int)}
			perDay[key] = d
		}
		d.total += s.Duration
		d.subjects[s.SubjectID] += s.Duration
	}

	var series Series
	var ids []string
	if selected != nil {
		ids = uniqueIDs(opts.SubjectIDs)
		for _, id := range ids {
			series.Keys = append(series.Keys, SeriesKey(id))
		}
	}

	series.Rows = make([]Row, 0, r.Days())
	total := 0
	running := make(map[string]int, len(ids))
	for date := range dateutil.Days(r.Start, r.End) {
		key := dateutil.FormatISODate(date)
		if d, ok := perDay[key]; ok {
			total += d.total
			for id, mins := range d.subjects {
				running[id] += mins
			}
		}
		row := Row{Date: key, Total: total}
		if selected != nil {
			row.Subjects = make(map[string]int, len(ids))
			for _, id := range ids {
				row.Subjects[SeriesKey(id)] = running[id]
			}
		}
		series.Rows = append(series.Rows, row)
	}
	return series, nil
}

// selection returns the set of chosen subjects, or nil when every subject
// is selected.
func selection(ids, all []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	if len(all) > 0 {
		covered := true
		for _, id := range all {
			if !set[id] {
				covered = false
				break
			}
		}
		if covered {
			return nil
		}
	}
	return set
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
