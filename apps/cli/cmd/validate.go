package cmd

import (
	"errors"
	"fmt"

	"github.com/fesi-dev/fesi/packages/core/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate batch files without executing them",
		Long: `Load batch files and report structural errors without sending any
request.

Examples:
  fesi validate requests.yaml
  fesi validate FESI/*.yaml`,
		Args: minimumArgs(1),
		RunE: validateCommand,
	}
}

func validateCommand(cmd *cobra.Command, args []string) error {
	var errs []error
	for _, file := range args {
		actions, err := loader.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d actions)\n", file, len(actions))
	}

	if len(errs) > 0 {
		return &reportedError{err: fmt.Errorf("validation failed: %w", errors.Join(errs...))}
	}
	return nil
}
