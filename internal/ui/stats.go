package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/stats"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func (a *App) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study time per subject",
		Long: `Show the total study time recorded for each subject, with a
breakdown by session type. Study and pomodoro sessions share one label.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			printSubjectTotals(cmd.OutOrStdout(), st.SubjectTotals())
			return nil
		},
	}
	cmd.AddCommand(a.statsSeriesCmd())
	return cmd
}

func printSubjectTotals(w io.Writer, totals []stats.SubjectTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No study time recorded yet.")
		return
	}
	top := totals[0].Minutes
	sum := 0
	for _, t := range totals {
		sum += t.Minutes
		fmt.Fprintf(w, "  %-24s %s %8s\n", truncate(t.Name, 24), StudyBar(t.Minutes, top, 20), formatStats(FormatDuration(t.Minutes)))
		parts := make([]string, len(t.Breakdown))
		for i, b := range t.Breakdown {
			parts[i] = fmt.Sprintf("%s %s", b.Label, FormatDuration(b.Minutes))
		}
		fmt.Fprintf(w, "  %-24s %s\n", "", formatMuted(strings.Join(parts, " · ")))
	}
	fmt.Fprintln(w, rule())
	fmt.Fprintf(w, "  %-24s %s\n", "Total", formatStats(FormatDuration(sum)))
}

func (a *App) statsSeriesCmd() *cobra.Command {
	var (
		start, end string
		subjects   []string
		format     string
		copyOut    bool
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print cumulative study time per day",
		Long: `Print the running total of study time for every day of a range.

Without --subject, only the combined total is shown. With one or more
--subject flags each selected subject gets its own column and the total
counts only those subjects.`,
		Example: `  mytracker stats series --start 2024-05-01 --end 2024-05-31
  mytracker stats series --start 2024-05-01 --end 2024-05-31 -s Álgebra -s Física --format csv --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snap := st.Snapshot()

			opts := stats.CumulativeOptions{Start: start, End: end}
			names := make(map[string]string)
			for _, ref := range subjects {
				s, err := findSubject(snap, ref)
				if err != nil {
					return err
				}
				opts.SubjectIDs = append(opts.SubjectIDs, s.ID)
				names[stats.SeriesKey(s.ID)] = s.Name
			}
			series, err := st.Cumulative(opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writeSeries(&buf, series, format, names); err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
			if copyOut {
				if err := copyToClipboard(buf.String()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default: start)")
	cmd.Flags().StringArrayVarP(&subjects, "subject", "s", nil, "Subject ID or name (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "Output format: table, csv, json, yaml")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the output to the clipboard")
	return cmd
}
