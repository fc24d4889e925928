package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikersanz-debug/MyTracker/internal/stats"
	"github.com/ikersanz-debug/MyTracker/internal/store"
	"github.com/ikersanz-debug/MyTracker/internal/study"
)

var errAmbiguousSubject = errors.New("more than one subject has that name, use the ID")

// findSubject resolves ref as a subject ID, then as a case-insensitive name.
func findSubject(snap store.Snapshot, ref string) (*study.Subject, error) {
	ref = strings.TrimSpace(ref)
	if s, ok := snap.Subject(ref); ok {
		return s, nil
	}
	var found *study.Subject
	for _, s := range snap.Subjects {
		if strings.EqualFold(s.Name, ref) {
			if found != nil {
				return nil, errAmbiguousSubject
			}
			found = s
		}
	}
	if found == nil {
		return nil, fmt.Errorf("subject %q: %w", ref, study.ErrNotFound)
	}
	return found, nil
}

func (a *App) subjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Manage subjects and their important dates",
	}
	cmd.AddCommand(a.subjectAddCmd())
	cmd.AddCommand(a.subjectListCmd())
	cmd.AddCommand(a.subjectEditCmd())
	cmd.AddCommand(a.subjectDeleteCmd())
	cmd.AddCommand(a.subjectDateCmd())
	return cmd
}

func (a *App) subjectAddCmd() *cobra.Command {
	var professor, color string

	cmd := &cobra.Command{
		Use:     "add [name]",
		Short:   "Add a subject",
		Example: `  mytracker subject add "Álgebra" --professor "Dra. Ruiz" --color "#F38BA8"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			s, err := st.AddSubject(cmd.Context(), study.SubjectInput{Name: args[0], Professor: professor, Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created subject #%s: %s %s\n", s.ID, s.Name, formatMuted(s.Color))
			return nil
		},
	}
	cmd.Flags().StringVar(&professor, "professor", "", "Professor name")
	cmd.Flags().StringVar(&color, "color", "", "Hex color (default "+study.DefaultColor+")")
	return cmd
}

func (a *App) subjectListCmd() *cobra.Command {
	var showDates bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects with their study time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snap := st.Snapshot()
			w := cmd.OutOrStdout()
			if len(snap.Subjects) == 0 {
				fmt.Fprintln(w, "No subjects yet. Add one with: mytracker subject add <name>")
				return nil
			}

			minutes := make(map[string]int)
			for _, t := range stats.SubjectTotals(snap.Subjects, snap.Sessions) {
				minutes[t.SubjectID] = t.Minutes
			}
			for _, s := range snap.Subjects {
				line := fmt.Sprintf("  #%-4s %-24s %8s", s.ID, truncate(s.Name, 24), FormatDuration(minutes[s.ID]))
				if s.Professor != "" {
					line += "  " + formatMuted(s.Professor)
				}
				fmt.Fprintln(w, line)
				if !showDates {
					continue
				}
				for _, d := range s.ImportantDates {
					fmt.Fprintf(w, "        %s %s %s  %s\n",
						formatEvent("★"), d.Date, d.Type.Label(), d.Description)
					fmt.Fprintf(w, "          %s\n", formatMuted("id: "+d.Key(s.ID)))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDates, "dates", false, "Show important dates")
	return cmd
}

func (a *App) subjectEditCmd() *cobra.Command {
	var name, professor, color string

	cmd := &cobra.Command{
		Use:   "edit [subject]",
		Short: "Change a subject's name, professor or color",
		Example: `  mytracker subject edit Álgebra --color "#A6E3A1"
  mytracker subject edit 3 --name "Álgebra lineal"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			s, err := findSubject(st.Snapshot(), args[0])
			if err != nil {
				return err
			}

			in := study.SubjectInput{Name: s.Name, Professor: s.Professor, Color: s.Color}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = name
			}
			if flags.Changed("professor") {
				in.Professor = professor
			}
			if flags.Changed("color") {
				in.Color = color
			}
			if err := st.UpdateSubject(cmd.Context(), s.ID, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated subject #%s\n", s.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&professor, "professor", "", "New professor")
	cmd.Flags().StringVar(&color, "color", "", "New hex color")
	return cmd
}

func (a *App) subjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [subject]",
		Short: "Delete a subject and all of its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			s, err := findSubject(st.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteSubject(cmd.Context(), s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted subject #%s: %s\n", s.ID, s.Name)
			return nil
		},
	}
}

func (a *App) subjectDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Manage exam, deadline and class dates of a subject",
	}
	cmd.AddCommand(a.subjectDateAddCmd())
	cmd.AddCommand(a.subjectDateRemoveCmd())
	return cmd
}

func (a *App) subjectDateAddCmd() *cobra.Command {
	var typ, date, desc string

	cmd := &cobra.Command{
		Use:   "add [subject]",
		Short: "Add an important date",
		Long: `Add an important date to a subject.

Types: examen, entrega, clase, otro. Dates accept YYYY-MM-DD or
relative values such as tomorrow, friday or next-monday.`,
		Example: `  mytracker subject date add Álgebra --type examen --date 2024-06-14 --desc "Final"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := resolveDate(date)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			s, err := findSubject(st.Snapshot(), args[0])
			if err != nil {
				return err
			}
			d, err := st.AddImportantDate(cmd.Context(), s.ID, typ, day, desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s for %s on %s (id: %s)\n",
				strings.ToLower(d.Type.Label()), s.Name, d.Date, d.Key(s.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(study.DateExam), "Date type: examen, entrega, clase, otro")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or relative, required)")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (a *App) subjectDateRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [subject] [date-id]",
		Short: "Remove an important date",
		Long:  `Remove an important date. Date IDs are shown by "mytracker subject list --dates".`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			s, err := findSubject(st.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := st.RemoveImportantDate(cmd.Context(), s.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed date from %s\n", s.Name)
			return nil
		},
	}
}
