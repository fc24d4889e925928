package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/llm"
	"github.com/ikersanz-debug/MyTracker/internal/logging"
	"github.com/ikersanz-debug/MyTracker/internal/study"
	"github.com/ikersanz-debug/MyTracker/internal/summary"
)

// newCoach builds the weekly coach. Replaced in tests.
var newCoach = func(ctx context.Context, provider, model, baseURL string) (*llm.Coach, error) {
	client, err := llm.NewClient(ctx, provider, model, baseURL)
	if err != nil {
		return nil, err
	}
	return llm.NewCoach(client), nil
}

func (a *App) weekCmd() *cobra.Command {
	var (
		date      string
		model     string
		noInsight bool
		copyOut   bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Summarize a week of study",
		Long: `Summarize a week of study, Monday through Sunday.

Shows time per day and per subject, the change against the previous
week and the exams and deadlines still ahead. When the week has recorded
time, the configured LLM adds a short review unless --no-insight is set.`,
		Example: `  mytracker week
  mytracker week --date last-monday --no-insight
  mytracker week --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()
			weekOf, err := dateutil.ParseRelativeDate(date, now)
			if err != nil {
				return err
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if model == "" {
				model = a.config.LLM.Model
			}

			opts := summary.Options{WeekOf: weekOf, Now: now}
			if !noInsight {
				coach, err := newCoach(ctx, a.config.LLM.Provider, model, a.config.LLM.BaseURL)
				if err != nil {
					logging.L().Debug("coach_unavailable", "error", err.Error())
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", formatMuted("Insight unavailable: "+err.Error()))
				}
				opts.Coach = coach
			}

			snap := st.Snapshot()
			week, err := summary.BuildWeekSummary(ctx, snap, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", formatMuted("Insight unavailable: "+err.Error()))
				opts.Coach = nil
				if week, err = summary.BuildWeekSummary(ctx, snap, opts); err != nil {
					return err
				}
			}

			printWeek(cmd.OutOrStdout(), week, now)

			if copyOut {
				prev := color.NoColor
				color.NoColor = true
				var buf bytes.Buffer
				printWeek(&buf, week, now)
				color.NoColor = prev
				if err := copyToClipboard(buf.String()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD or relative, default: today)")
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	cmd.Flags().BoolVar(&noInsight, "no-insight", false, "Skip LLM insight")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the summary as plain text to the clipboard")
	return cmd
}

func printWeek(w io.Writer, week *summary.WeekSummary, now time.Time) {
	header := fmt.Sprintf("WEEK: %s - %s", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, rule())

	top := 0
	for _, d := range week.Days {
		top = max(top, d.Minutes)
	}
	for _, d := range week.Days {
		label := d.Date.Format("Mon Jan 2")
		if dateutil.SameDay(d.Date, now) {
			label = formatHeader(fmt.Sprintf("%-10s", label))
		} else {
			label = fmt.Sprintf("%-10s", label)
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", label, StudyBar(d.Minutes, top, 24), FormatDuration(d.Minutes))
	}
	fmt.Fprintln(w, rule())

	cur := week.Current
	fmt.Fprintf(w, "  Total: %s  %s\n", formatStats(FormatDuration(cur.TotalMinutes)), formatMuted("("+week.Comparison()+")"))
	fmt.Fprintf(w, "  Sessions: %d  |  Active days: %d/%d  |  Average: %s/day\n",
		cur.Sessions, cur.ActiveDays, cur.Days, FormatDuration(cur.AveragePerDay()))
	if best, ok := week.BusiestDay(); ok {
		fmt.Fprintf(w, "  Busiest day: %s (%s)\n", best.Date.Format("Monday"), formatStats(FormatDuration(best.Minutes)))
	}

	if len(week.Subjects) > 0 {
		fmt.Fprintf(w, "\n  %s\n", formatHeader("SUBJECTS"))
		for _, s := range week.Subjects {
			parts := make([]string, len(s.Breakdown))
			for i, b := range s.Breakdown {
				parts[i] = b.Label + " " + FormatDuration(b.Minutes)
			}
			fmt.Fprintf(w, "  %-24s %8s  %s\n", truncate(s.Name, 24), FormatDuration(s.Minutes), formatMuted(strings.Join(parts, ", ")))
		}
	}

	if upcoming := week.Upcoming(now); len(upcoming) > 0 {
		fmt.Fprintf(w, "\n  %s\n", formatHeader("UPCOMING"))
		for _, e := range upcoming {
			fmt.Fprintf(w, "  %s %s  %-8s %s\n", formatEvent("★"), e.Date.Format("Mon Jan 2"), study.DateType(e.Type).Label(), eventLabel(e))
		}
	}

	if week.Insight != nil {
		fmt.Fprintf(w, "\n  %s\n", formatHeader("INSIGHT"))
		fmt.Fprintln(w, rule())
		printInsightWrapped(w, week.Insight.String(), min(termWidth(), 74)-2)
	}
	fmt.Fprintln(w)
}
