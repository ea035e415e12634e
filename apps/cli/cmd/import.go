package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fesi-dev/fesi/packages/import/curl"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		outputFile string
		noNames    bool
	)

	importCmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Convert curl commands into a batch file",
		Long: `Convert curl commands (one per line, backslash continuations allowed)
into a fesi batch file. Use "-" to read from stdin.

Bodies must be flat JSON objects or form data.

Examples:
  fesi import requests.sh -o FESI/requests.yaml
  pbpaste | fesi import -`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converter := curl.NewConverter(curl.WithNames(!noNames))

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open file: %w", err)
				}
				defer f.Close()
				in = f
			}

			actions, err := converter.ConvertReader(in)
			if err != nil {
				return err
			}
			data, err := curl.Marshal(actions)
			if err != nil {
				return err
			}

			if outputFile == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outputFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s (%d actions)\n", outputFile, len(actions))
			return nil
		},
	}

	importCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the batch file here (default: stdout)")
	importCmd.Flags().BoolVar(&noNames, "no-names", false, "Do not name actions after their method and path")

	return importCmd
}
