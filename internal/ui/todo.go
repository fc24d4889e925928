package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) todoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"todos"},
		Short:   "Manage the to-do list",
	}
	cmd.AddCommand(a.todoAddCmd())
	cmd.AddCommand(a.todoListCmd())
	cmd.AddCommand(a.todoDoneCmd())
	cmd.AddCommand(a.todoDeleteCmd())
	return cmd
}

func (a *App) todoAddCmd() *cobra.Command {
	var due string

	cmd := &cobra.Command{
		Use:     "add [text]",
		Short:   "Add a to-do",
		Example: `  mytracker todo add "Repasar tema 4" --due friday`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if due != "" {
				d, err := resolveDate(due)
				if err != nil {
					return err
				}
				due = d
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			td, err := st.AddTodo(cmd.Context(), args[0], due)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added to-do #%s: %s\n", td.ID, td.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or relative)")
	return cmd
}

func (a *App) todoListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open to-dos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			shown := 0
			for _, td := range st.Snapshot().Todos {
				if td.Done && !all {
					continue
				}
				symbol := "○"
				if td.Done {
					symbol = formatStudy("✓")
				}
				line := fmt.Sprintf("  %s  #%-4s %s", symbol, td.ID, td.Text)
				if td.DueDate != "" {
					line += "  " + formatMuted("due "+td.DueDate)
				}
				fmt.Fprintln(w, line)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(w, "Nothing to do.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include finished to-dos")
	return cmd
}

func (a *App) todoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a to-do as done, or open again if it was done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.ToggleTodo(cmd.Context(), args[0]); err != nil {
				return err
			}
			td, _ := st.Snapshot().Todo(args[0])
			state := "open"
			if td != nil && td.Done {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "To-do #%s is %s\n", args[0], state)
			return nil
		},
	}
}

func (a *App) todoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a to-do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.DeleteTodo(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted to-do #%s\n", args[0])
			return nil
		},
	}
}
