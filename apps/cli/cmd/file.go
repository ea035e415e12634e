package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fesi-dev/fesi/packages/core/config"
	"github.com/fesi-dev/fesi/packages/core/runner"
	"github.com/fesi-dev/fesi/packages/output"
	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

type fileOptions struct {
	dryRun bool
	watch  bool
}

func newFileCmd(global *globalOptions) *cobra.Command {
	opts := &fileOptions{}

	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Run the actions of a YAML batch file",
		Long: `Run every action declared in a YAML batch file, in file order, and
store each response.

The file has a single top-level "actions" list:

  actions:
    - name: create-user
      url: https://api.example.com/users
      method: POST
      header:
        Authorization: Bearer t
      body:
        name: Ana

Examples:
  fesi file requests.yaml
  fesi file requests.yaml --on-error continue
  fesi file requests.yaml --store both -o json
  fesi file requests.yaml --watch`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fileCommand(cmd, global, opts, args[0])
		},
	}

	f := fileCmd.Flags()
	f.String("on-error", "halt", "Failure policy: halt, continue (env: FESI_ON_ERROR)")
	f.String("store", config.StoreFiles, "Where responses go: files, sqlite, both, none (env: FESI_STORE)")
	f.StringP("output", "o", "console", "Output format: console, json (env: FESI_OUTPUT)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Load and show the actions without sending them")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Watch the file for changes and re-run it")

	return fileCmd
}

func fileCommand(cmd *cobra.Command, global *globalOptions, opts *fileOptions, path string) error {
	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, err := runner.ParsePolicy(cfg.OnError)
	if err != nil {
		return &config.Error{Err: err}
	}

	formatter, err := output.New(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Verbose, cfg.NoColor)
	if err != nil {
		return &config.Error{Err: err}
	}

	b := &batch{
		cfg:       cfg,
		policy:    policy,
		path:      path,
		dryRun:    opts.dryRun,
		formatter: formatter,
	}

	err = b.run(cmd.Context())
	if !opts.watch {
		return err
	}
	return b.watch(cmd.Context(), cmd)
}

// batch runs one batch file with a fixed configuration.
type batch struct {
	cfg       *config.Config
	policy    runner.Policy
	path      string
	dryRun    bool
	formatter output.Formatter
}

func (b *batch) run(ctx context.Context) error {
	runID := uuid.NewString()

	persister, closeStore, err := openPersister(b.cfg, runID, b.dryRun)
	if err != nil {
		b.formatter.FormatError(err)
		b.flush()
		return &reportedError{err: err}
	}
	defer closeStore()

	r := runner.NewRunner(
		&runner.Config{
			OnError: b.policy,
			RunID:   runID,
			Source:  b.path,
			DryRun:  b.dryRun,
		},
		runner.WithExecutor(newClient(b.cfg)),
		runner.WithPersister(persister),
		runner.WithListener(b.formatter),
	)

	result, err := r.RunFile(ctx, b.path)
	if result != nil {
		b.formatter.FormatResult(result)
	}
	if err != nil {
		b.formatter.FormatError(err)
	}
	if flushErr := b.flush(); flushErr != nil && err == nil {
		return fmt.Errorf("error writing output: %w", flushErr)
	}
	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func (b *batch) flush() error {
	if flushable, ok := b.formatter.(output.Flushable); ok {
		return flushable.Flush()
	}
	return nil
}

// watch re-runs the batch whenever the file is written, until ctx ends.
func (b *batch) watch(ctx context.Context, cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(b.path)
	if err != nil {
		return err
	}
	// Editors often replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running...\n\n", b.path)
			// Failures were already reported by the formatter.
			_ = b.run(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// openPersister builds the persister selected by cfg.Store. The returned
// close function is always safe to call.
func openPersister(cfg *config.Config, runID string, dryRun bool) (persist.Persister, func(), error) {
	noop := func() {}
	if dryRun || strings.EqualFold(cfg.Store, config.StoreNone) {
		return persist.Discard{}, noop, nil
	}

	var persisters persist.Multi
	closeStore := noop
	if cfg.UsesFiles() {
		persisters = append(persisters, persist.NewFileStore(cfg.OutputDir))
	}
	if cfg.UsesSQLite() {
		store, err := persist.OpenSQLite(cfg.HistoryDB)
		if err != nil {
			return nil, noop, &persist.WriteError{Label: "history", Path: cfg.HistoryDB, Err: err}
		}
		persisters = append(persisters, store.ForRun(runID))
		closeStore = func() { _ = store.Close() }
	}

	if len(persisters) == 1 {
		return persisters[0], closeStore, nil
	}
	return persisters, closeStore, nil
}
