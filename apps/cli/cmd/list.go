package cmd

import (
	"fmt"

	"github.com/fesi-dev/fesi/packages/core/loader"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the actions in a batch file",
		Long: `List the actions defined in a YAML batch file, in the order they run.

Examples:
  fesi list requests.yaml`,
		Args: exactArgs(1),
		RunE: listCommand,
	}
}

func listCommand(cmd *cobra.Command, args []string) error {
	actions, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", args[0])
	for i, a := range actions {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s %s %s\n", i+1, a.Label(), a.Method, a.URL)
		if len(a.Header) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "     headers: %d\n", len(a.Header))
		}
		if len(a.Body) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "     body fields: %d\n", len(a.Body))
		}
	}

	return nil
}
