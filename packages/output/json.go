package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string       `json:"runId"`
	Source   string       `json:"source"`
	Summary  JSONSummary  `json:"summary"`
	Actions  []JSONAction `json:"actions"`
	Latency  *JSONLatency `json:"latency,omitempty"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
	Errors   []string     `json:"errors,omitempty"`
}

type JSONSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	NotRun    int `json:"notRun"`
	Skipped   int `json:"skipped"`
}

type JSONAction struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Method   string  `json:"method"`
	URL      string  `json:"url"`
	Passed   bool    `json:"passed"`
	Skipped  bool    `json:"skipped,omitempty"`
	Duration float64 `json:"duration"`
	Bytes    int     `json:"bytes"`
	Error    string  `json:"error,omitempty"`
}

// JSONLatency holds latency percentiles in milliseconds.
type JSONLatency struct {
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// JSONFormatter formats a run as a single JSON document.
type JSONFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	output    JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
		output:    JSONOutput{Actions: make([]JSONAction, 0)},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func JSONWithErrWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.errWriter = w
	}
}

func (f *JSONFormatter) ActionStarted(int, action.Action) {}

func (f *JSONFormatter) ActionFinished(r *runner.ActionResult) {
	a := JSONAction{
		Index:    r.Index,
		Name:     r.Name,
		Method:   r.Action.Method.String(),
		URL:      r.Action.URL,
		Passed:   r.Passed(),
		Skipped:  r.Skipped,
		Duration: ms(r.Duration),
		Bytes:    len(r.Body),
	}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	f.output.Actions = append(f.output.Actions, a)
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.output.RunID = result.RunID
	f.output.Source = result.Source
	f.output.Summary = JSONSummary{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		NotRun:    result.NotRun,
		Skipped:   result.Skipped,
	}
	f.output.Duration = ms(result.Duration)
	if result.Latency.Count > 0 {
		l := result.Latency
		f.output.Latency = &JSONLatency{
			P50: ms(l.P50), P95: ms(l.P95), P99: ms(l.P99),
			Min: ms(l.Min), Max: ms(l.Max), Mean: ms(l.Mean),
		}
	}
}

// FormatError records the error in the document; it is also echoed to
// the error stream.
func (f *JSONFormatter) FormatError(err error) {
	f.output.Errors = append(f.output.Errors, err.Error())
	_, _ = io.WriteString(f.errWriter, "Error: "+err.Error()+"\n")
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	f.output.Time = time.Now().Format(time.RFC3339)
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(f.output)
	f.output = JSONOutput{Actions: make([]JSONAction, 0)}
	return err
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
