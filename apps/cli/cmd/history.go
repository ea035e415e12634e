package cmd

import (
	"fmt"
	"strings"

	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/spf13/cobra"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show responses recorded in the history database",
		Long: `Show the most recent responses stored by "fesi file --store sqlite"
(or --store both), newest first.

Examples:
  fesi history
  fesi history --limit 5 -v`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyCommand(cmd, global, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return historyCmd
}

func historyCommand(cmd *cobra.Command, global *globalOptions, limit int) error {
	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := persist.OpenSQLite(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No responses recorded in %s\n", store.Path())
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "#%d  %s  %s  run %s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Label, e.RunID)
		if cfg.Verbose {
			fmt.Fprintf(out, "    %s\n", strings.ReplaceAll(strings.TrimSpace(e.Content), "\n", "\n    "))
		}
	}

	return nil
}
