package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fesi-dev/fesi/packages/core/runner"
)

// Formatter renders a batch run.
type Formatter interface {
	runner.Listener
	FormatResult(result *runner.RunResult)
	FormatError(err error)
}

// Flushable is implemented by formatters that buffer their output.
type Flushable interface {
	Flush() error
}

// New returns the formatter for a format name ("console" or "json").
func New(format string, stdout, stderr io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		return NewConsoleFormatter(
			WithWriter(stdout),
			WithErrWriter(stderr),
			WithVerbose(verbose),
			WithNoColor(noColor),
		), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(stdout), JSONWithErrWriter(stderr)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected console or json)", format)
	}
}
