package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/dateutil"
	"github.com/ikersanz-debug/MyTracker/internal/store"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

// resolveDate turns a YYYY-MM-DD or relative date into YYYY-MM-DD.
// Empty means today.
func resolveDate(s string) (string, error) {
	t, err := dateutil.ParseRelativeDate(s, time.Now())
	if err != nil {
		return "", err
	}
	return dateutil.FormatISODate(t), nil
}

func (a *App) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Log and manage study sessions",
	}
	cmd.AddCommand(a.sessionAddCmd())
	cmd.AddCommand(a.sessionListCmd())
	cmd.AddCommand(a.sessionEditCmd())
	cmd.AddCommand(a.sessionDeleteCmd())
	return cmd
}

// sessionFlags are the editable fields shared by add and edit.
type sessionFlags struct {
	subject string
	date    string
	minutes string
	start   string
	end     string
	typ     string
	desc    string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.subject, "subject", "s", "", "Subject ID or name (empty for general study)")
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD or relative, default: today)")
	cmd.Flags().StringVarP(&f.minutes, "minutes", "m", "", "Duration in minutes")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM), wraps past midnight")
	cmd.Flags().StringVar(&f.typ, "type", string(study.SessionStudy), "Type: study, pomodoro, exam, assignment, class, other")
	cmd.Flags().StringVar(&f.desc, "desc", "", "Description")
}

// input builds a SessionInput from the flags, starting from base and
// overriding only the flags the user set.
func (f *sessionFlags) input(cmd *cobra.Command, snap store.Snapshot, base study.SessionInput) (study.SessionInput, error) {
	changed := cmd.Flags().Changed
	in := base
	if changed("subject") {
		in.SubjectID = ""
		if f.subject != "" {
			s, err := findSubject(snap, f.subject)
			if err != nil {
				return in, err
			}
			in.SubjectID = s.ID
		}
	}
	if changed("date") || in.Date == "" {
		day, err := resolveDate(f.date)
		if err != nil {
			return in, err
		}
		in.Date = day
	}
	if changed("minutes") {
		in.Duration = f.minutes
		// A stored range would override the new duration.
		if !changed("start") && !changed("end") {
			in.StartTime, in.EndTime = "", ""
		}
	}
	if changed("start") {
		in.StartTime = f.start
	}
	if changed("end") {
		in.EndTime = f.end
	}
	if changed("type") || in.Type == "" {
		in.Type = f.typ
	}
	if changed("desc") {
		in.Description = f.desc
	}
	return in, nil
}

func (a *App) sessionAddCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a study session",
		Long: `Log a study session.

Give either --minutes or a --start/--end pair. A range whose end is
before its start runs past midnight.`,
		Example: `  mytracker session add -s Álgebra -m 90
  mytracker session add -s Física --date yesterday --start 22:30 --end 00:15
  mytracker session add --type class -s Álgebra --start 09:00 --end 11:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			in, err := f.input(cmd, st.Snapshot(), study.SessionInput{})
			if err != nil {
				return err
			}
			s, err := st.AddStudySession(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged session #%s: %s %s on %s\n",
				s.ID, formatStudy(FormatDuration(s.Duration)), s.Type, dateutil.FormatISODate(s.Date))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) sessionListCmd() *cobra.Command {
	var start, end, subject string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions in a date range",
		Long: `List sessions in a date range.

Without flags, lists today's sessions. With only --start, lists that day.`,
		Example: `  mytracker session list
  mytracker session list --start 2024-05-06 --end 2024-05-12 -s Álgebra`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dateRange, err := dateutil.NewDateRange(start, end)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snap := st.Snapshot()

			subjectID := ""
			if subject != "" {
				s, err := findSubject(snap, subject)
				if err != nil {
					return err
				}
				subjectID = s.ID
			}

			w := cmd.OutOrStdout()
			var currentDate string
			total, count := 0, 0
			for _, s := range snap.Sessions {
				if !dateRange.Contains(s.Date) || (subjectID != "" && s.SubjectID != subjectID) {
					continue
				}
				date := dateutil.FormatISODate(s.Date)
				if date != currentDate {
					if currentDate != "" {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "  %s\n", formatHeader(s.Date.Format("Mon Jan 2")))
					currentDate = date
				}
				printSessionRow(w, snap, s)
				total += s.Duration
				count++
			}
			if count == 0 {
				fmt.Fprintln(w, "No sessions found in the specified date range.")
				return nil
			}
			fmt.Fprintf(w, "\n  %d sessions, %s\n", count, formatStats(FormatDuration(total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default: start)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Only this subject (ID or name)")
	return cmd
}

func printSessionRow(w io.Writer, snap store.Snapshot, s *study.Session) {
	span := "           "
	if s.HasTimeRange() {
		span = s.StartTime + "-" + s.EndTime
	}
	name := "(general)"
	if subj, ok := snap.Subject(s.SubjectID); ok {
		name = subj.Name
	}
	duration := fmt.Sprintf("%7s", FormatDuration(s.Duration))
	if s.Type.IsStudy() {
		duration = formatStudy(duration)
	} else {
		duration = formatEvent(duration)
	}
	line := fmt.Sprintf("    #%-4s %s  %s  %-10s %s", s.ID, span, duration, s.Type, name)
	if s.Description != "" {
		line += "  " + formatMuted(s.Description)
	}
	fmt.Fprintln(w, line)
}

func (a *App) sessionEditCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a logged session",
		Long: `Change a logged session. Only the flags you pass are updated.
Passing --minutes alone drops the session's time range.`,
		Example: `  mytracker session edit 12 -m 45
  mytracker session edit 12 --start 10:00 --end 11:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snap := st.Snapshot()
			s, ok := snap.Session(args[0])
			if !ok {
				return fmt.Errorf("session %s: %w", args[0], study.ErrNotFound)
			}

			base := study.SessionInput{
				SubjectID:   s.SubjectID,
				Date:        dateutil.FormatISODate(s.Date),
				Duration:    strconv.Itoa(s.Duration),
				Type:        string(s.Type),
				Description: s.Description,
				StartTime:   s.StartTime,
				EndTime:     s.EndTime,
			}
			in, err := f.input(cmd, snap, base)
			if err != nil {
				return err
			}
			if err := st.UpdateStudySession(cmd.Context(), s.ID, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated session #%s\n", s.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.DeleteStudySession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session #%s\n", args[0])
			return nil
		},
	}
}
