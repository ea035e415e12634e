package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fesi-dev/fesi/packages/capture"
	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/http"
	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/spf13/cobra"
)

type runOptions struct {
	method     string
	endpoint   string
	name       string
	body       []string
	headers    []string
	save       bool
	selectPath string
	pretty     bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Send a single HTTP request",
		Long: `Send one request and print the response body to stdout.

Body fields are sent as a JSON object of strings. Both --body and
--header take key=value and split on the first '='.

Examples:
  fesi run -m GET -e https://api.example.com/users
  fesi run -m POST -e https://api.example.com/users -b name=Ana -b role=admin
  fesi run -m GET -e https://api.example.com/users/1 -H Authorization="Bearer t" --select name
  fesi run -m DELETE -e https://api.example.com/users/1 --save --name delete-user`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, global, opts)
		},
	}

	f := runCmd.Flags()
	f.StringVarP(&opts.method, "method", "m", "", "HTTP method: GET, POST, PUT, PATCH, DELETE (required)")
	f.StringVarP(&opts.endpoint, "endpoint", "e", "", "Request URL (required)")
	f.StringArrayVarP(&opts.body, "body", "b", nil, "Body field as key=value (repeatable)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Header as key=value (repeatable)")
	f.StringVar(&opts.name, "name", "", "Name used when saving the response")
	f.BoolVar(&opts.save, "save", false, "Save the response body under the output directory")
	f.StringVar(&opts.selectPath, "select", "", "Print only the value at this JSON path (e.g., data.0.id)")
	f.BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	return runCmd
}

func runCommand(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	if opts.method == "" {
		return newUsageError(errors.New("--method is required"))
	}
	if opts.endpoint == "" {
		return newUsageError(errors.New("--endpoint is required"))
	}

	method, err := action.ParseMethod(opts.method)
	if err != nil {
		return err
	}

	spec := http.NewRequestSpec(method, opts.endpoint).SetName(opts.name)
	for _, kv := range opts.body {
		key, value, err := splitKeyValue("body", kv)
		if err != nil {
			return err
		}
		spec.SetBodyField(key, value)
	}
	for _, kv := range opts.headers {
		key, value, err := splitKeyValue("header", kv)
		if err != nil {
			return err
		}
		spec.SetHeader(key, value)
	}

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}

	body, err := newClient(cfg).Execute(cmd.Context(), spec)
	if err != nil {
		return err
	}

	if opts.save {
		store := persist.NewFileStore(cfg.OutputDir)
		if err := store.Persist(body, spec.Label()); err != nil {
			return err
		}
	}

	out := body
	if opts.selectPath != "" {
		out, err = capture.Select(out, opts.selectPath)
		if err != nil {
			return err
		}
	}
	if opts.pretty {
		out = capture.Pretty(out)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return nil
}

// splitKeyValue splits "key=value" on the first '='.
func splitKeyValue(flag, kv string) (string, string, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return "", "", newUsageError(fmt.Errorf("invalid format for --%s: expected key=value, got %q", flag, kv))
	}
	return key, value, nil
}
