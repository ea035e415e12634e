package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fesi-dev/fesi/packages/core/config"
	"github.com/fesi-dev/fesi/packages/http"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	timeout    time.Duration
	noColor    bool
	verbose    bool
}

// NewRootCmd builds the fesi command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "fesi",
		Short: "A drop-in replacement for curl",
		Long: `fesi sends HTTP requests from the command line, or runs a batch of
requests declared in a YAML file and stores every response.

Examples:
  fesi run -m GET -e https://api.example.com/users
  fesi run -m POST -e https://api.example.com/users -b name=Ana -H Authorization="Bearer t"
  fesi file requests.yaml
  fesi init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: FESI/fesi.yaml or ./fesi.yaml)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout, 0 for none (e.g., 30s, 1m) (env: FESI_TIMEOUT)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output (env: FESI_NO_COLOR)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (env: FESI_VERBOSE)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newUsageError(err)
	})

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newFileCmd(opts))
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// Execute runs the CLI and exits with the code matching the outcome.
func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		printError(stderr, err)
	}
	return ExitCode(err)
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	_, _ = io.WriteString(w, red("Error:")+" "+err.Error()+"\n")
}

// loadConfig resolves configuration for cmd, letting its changed flags win.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(o.configPath, cmd.Flags())
}

func newClient(cfg *config.Config) *http.Client {
	return http.NewClient(
		http.WithTimeout(cfg.Timeout),
		http.WithUserAgent(cfg.UserAgent),
		http.WithDefaultHeaders(cfg.Headers),
	)
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return newUsageError(cobra.ExactArgs(n)(cmd, args))
	}
}

func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return newUsageError(cobra.MinimumNArgs(n)(cmd, args))
	}
}
