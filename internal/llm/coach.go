package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikersanz-debug/MyTracker/internal/stats"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/timeline"
)

const coachSystemPrompt = `You are a concise study coach for a university student. Answer with JSON only.`

const coachPromptTemplate = `Review this week of study and answer with exactly this JSON shape:

{"theme": "2-4 word theme", "observations": ["..."], "next_week": ["..."]}

Rules:
- At most 3 observations and 2 next_week actions
- Keep every line under 70 characters
- Be specific: name subjects, days and durations from the data
- Mention upcoming exams or deadlines when they should change the plan

Week data:
%s`

// ErrEmptyInsight is returned when the model answers without any content.
var ErrEmptyInsight = errors.New("empty insight")

// WeekData is what the coach sees of one week.
type WeekData struct {
	Start           time.Time
	End             time.Time
	Days            []stats.DayTotal
	Subjects        []stats.SubjectTotal
	Upcoming        []timeline.Activity // events still ahead
	PreviousMinutes int
}

// Insight is the coach's reading of a week.
type Insight struct {
	Theme        string   `json:"theme"`
	Observations []string `json:"observations"`
	NextWeek     []string `json:"next_week"`
}

// String renders the insight as plain text lines.
func (in Insight) String() string {
	var sb strings.Builder
	if in.Theme != "" {
		fmt.Fprintf(&sb, "THEME: %s\n", in.Theme)
	}
	for _, o := range in.Observations {
		fmt.Fprintf(&sb, "• %s\n", o)
	}
	if len(in.NextWeek) > 0 {
		sb.WriteString("\nNEXT WEEK:\n")
		for _, a := range in.NextWeek {
			fmt.Fprintf(&sb, "➜  %s\n", a)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Coach turns weekly study data into short, actionable advice.
type Coach struct {
	client Client
}

// NewCoach creates a coach that talks to client.
func NewCoach(client Client) *Coach {
	return &Coach{client: client}
}

// WeeklyInsight asks the model to review the week.
func (c *Coach) WeeklyInsight(ctx context.Context, week WeekData) (Insight, error) {
	var in Insight
	err := c.client.ChatJSON(ctx, []Message{
		{Role: RoleSystem, Content: coachSystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(coachPromptTemplate, FormatWeekData(week))},
	}, &in)
	if err != nil {
		return Insight{}, fmt.Errorf("weekly insight: %w", err)
	}
	if in.Theme == "" && len(in.Observations) == 0 && len(in.NextWeek) == 0 {
		return Insight{}, ErrEmptyInsight
	}
	return in, nil
}

// FormatWeekData renders the week as compact text for the prompt.
func FormatWeekData(week WeekData) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Week: %s - %s\n", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
	total := 0
	for _, d := range week.Days {
		total += d.Minutes
	}
	fmt.Fprintf(&sb, "Total: %s (previous week %s)\n", study.FormatMinutes(total), study.FormatMinutes(week.PreviousMinutes))

	sb.WriteString("\nPer day:\n")
	for _, d := range week.Days {
		fmt.Fprintf(&sb, "  %s  %s\n", d.Date.Format("Mon Jan 2"), study.FormatMinutes(d.Minutes))
	}

	if len(week.Subjects) > 0 {
		sb.WriteString("\nPer subject:\n")
		for _, s := range week.Subjects {
			parts := make([]string, len(s.Breakdown))
			for i, b := range s.Breakdown {
				parts[i] = b.Label + " " + study.FormatMinutes(b.Minutes)
			}
			fmt.Fprintf(&sb, "  %s  %s  (%s)\n", s.Name, study.FormatMinutes(s.Minutes), strings.Join(parts, ", "))
		}
	}

	if len(week.Upcoming) > 0 {
		sb.WriteString("\nUpcoming:\n")
		for _, a := range week.Upcoming {
			fmt.Fprintf(&sb, "  %s  %s\n", a.Date.Format("Mon Jan 2"), a.Label)
		}
	}
	return sb.String()
}
