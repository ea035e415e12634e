package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/runner"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithErrWriter sets where errors are written.
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) ActionStarted(index int, a action.Action) {
	if !f.verbose {
		return
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintf(f.writer, "  %s %s %s\n", gray(fmt.Sprintf("[%d]", index+1)), a.Method, a.URL)
}

func (f *ConsoleFormatter) ActionFinished(r *runner.ActionResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	switch {
	case r.Skipped:
		fmt.Fprintf(f.writer, "  %s %s %s %s (dry run)\n", yellow("-"), r.Name, r.Action.Method, r.Action.URL)
	case r.Err != nil:
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), r.Name, red(fmt.Sprintf("(%v)", r.Err)))
	default:
		fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		if f.verbose {
			fmt.Fprintf(f.writer, "    Bytes: %d\n", len(r.Body))
		}
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Batch: "+result.Source))
	if f.verbose {
		fmt.Fprintf(f.writer, "Run:     %s\n", result.RunID)
	}
	fmt.Fprintf(f.writer, "Actions: ")
	if result.Succeeded > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d succeeded", result.Succeeded)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.NotRun > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d not run", result.NotRun)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", result.Total)
	fmt.Fprintf(f.writer, "Time:    %dms\n", result.Duration.Milliseconds())

	if f.verbose && result.Latency.Count > 0 {
		l := result.Latency
		fmt.Fprintf(f.writer, "Latency: p50=%s p95=%s p99=%s min=%s max=%s mean=%s\n",
			formatDuration(l.P50), formatDuration(l.P95), formatDuration(l.P99),
			formatDuration(l.Min), formatDuration(l.Max), formatDuration(l.Mean))
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
