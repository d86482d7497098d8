package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:         "columns",
	Short:       "Manage the saved column selection of a table",
	Annotations: map[string]string{requiresServer: "true"},
}

var columnsGetCmd = &cobra.Command{
	Use:   "get TABLE",
	Short: "Show the columns saved for a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, err := newClient().GetTableColumns(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printColumns(cmd, args[0], columns)
	},
}

var columnsSetCmd = &cobra.Command{
	Use:   "set TABLE [COLUMN...]",
	Short: "Save the columns shown for a table; no columns restores the defaults",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns := args[1:]
		if err := newClient().SetTableColumns(cmd.Context(), args[0], columns); err != nil {
			return err
		}
		return printColumns(cmd, args[0], columns)
	},
}

func printColumns(cmd *cobra.Command, table string, columns []string) error {
	if jsonOutput {
		if columns == nil {
			columns = []string{}
		}
		return printJSON(cmd, map[string]any{"table": table, "columns": columns})
	}
	if len(columns) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: default columns\n", table)
		return nil
	}
	okLabel.Fprintf(cmd.OutOrStdout(), "%s: ", table)
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(columns, ", "))
	return nil
}

func init() {
	columnsCmd.AddCommand(columnsGetCmd, columnsSetCmd)
	rootCmd.AddCommand(columnsCmd)
}
