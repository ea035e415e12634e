package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fesi-dev/fesi/packages/core/config"
	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/spf13/cobra"
)

const exampleBatch = `# Run with: fesi file FESI/example.yaml
actions:
  - name: list-posts
    url: https://jsonplaceholder.typicode.com/posts
    method: GET

  - name: create-post
    url: https://jsonplaceholder.typicode.com/posts
    method: POST
    header:
      Accept: application/json
    body:
      title: hello
      userId: 1
`

func newInitCmd() *cobra.Command {
	var dir string

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new fesi project",
		Long: `Initialize a new fesi project in the current directory.

This creates:
  - FESI/               - Project directory
  - FESI/fesi.yaml      - Configuration file
  - FESI/example.yaml   - Example batch file
  - FESI/response/      - Saved responses

Running it again leaves an existing project untouched.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommand(cmd, dir)
		},
	}
	initCmd.Flags().StringVar(&dir, "dir", ".", "Directory to initialize")

	return initCmd
}

func initCommand(cmd *cobra.Command, dir string) error {
	projectDir := filepath.Join(dir, persist.ProjectDir)

	if info, err := os.Stat(projectDir); err == nil && info.IsDir() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Fesi project already initialized")
		return nil
	}

	responseDir := filepath.Join(dir, persist.DefaultResponseDir)
	if err := os.MkdirAll(responseDir, 0755); err != nil {
		return fmt.Errorf("could not create fesi project: %w", err)
	}

	configFile := filepath.Join(projectDir, config.ConfigFilenames[0])
	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	exampleFile := filepath.Join(projectDir, "example.yaml")
	if err := os.WriteFile(exampleFile, []byte(exampleBatch), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nFesi project created\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'fesi file %s' to execute the example batch.\n", filepath.ToSlash(exampleFile))

	return nil
}
