package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect generated coaching modules",
	}

	cmd.AddCommand(newModulesListCmd())
	cmd.AddCommand(newModulesShowCmd())

	return cmd
}

func newModulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the account's modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := apiClient.Modules(context.Background())
			if err != nil {
				return err
			}
			if getOutputFormat() == "json" {
				return printJSON(modules)
			}

			t := NewTable("ID", "TITLE", "DAYS", "CREATED")
			for _, m := range modules {
				t.AddRow(strconv.FormatInt(m.ID, 10), m.Title,
					strconv.Itoa(m.TotalDays), m.CreatedAt.Format("2006-01-02"))
			}
			t.Render()
			return nil
		},
	}
}

func newModulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one module with its days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid module id %q", args[0])
			}

			m, err := apiClient.Module(context.Background(), id)
			if err != nil {
				return err
			}
			if getOutputFormat() == "json" {
				return printJSON(m)
			}

			fmt.Printf("%s (%d days)\n%s\n\n", m.Title, m.TotalDays, m.Description)
			t := NewTable("DAY", "TITLE", "FRAMEWORK", "SHIFT FOCUS")
			for _, d := range m.Days {
				t.AddRow(strconv.Itoa(d.DayNumber), d.Title, d.FrameworkName, d.ShiftFocus)
			}
			t.Render()
			return nil
		},
	}
}
