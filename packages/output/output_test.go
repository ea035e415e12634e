package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/runner"
	"github.com/fesi-dev/fesi/packages/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() (*runner.RunResult, []*runner.ActionResult) {
	ok := &runner.ActionResult{
		Index:    0,
		Name:     "users",
		Action:   action.Action{URL: "http://x/users", Method: action.MethodGet},
		Body:     `{"ok":true}`,
		Duration: 12 * time.Millisecond,
	}
	failed := &runner.ActionResult{
		Index:  1,
		Name:   "create",
		Action: action.Action{URL: "http://x/users", Method: action.MethodPost},
		Err:    errors.New("connection refused"),
	}
	result := &runner.RunResult{
		RunID:     "run-1",
		Source:    "batch.yaml",
		Results:   []*runner.ActionResult{ok, failed},
		Total:     3,
		Succeeded: 1,
		Failed:    1,
		NotRun:    1,
		Duration:  20 * time.Millisecond,
		Latency:   metrics.Summary{Count: 2, P50: 12 * time.Millisecond, P99: 12 * time.Millisecond},
	}
	return result, result.Results
}

func TestConsoleFormatter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&out), WithErrWriter(&errOut), WithNoColor(true), WithVerbose(true))

	result, actions := sampleRun()
	for _, a := range actions {
		f.ActionStarted(a.Index, a.Action)
		f.ActionFinished(a)
	}
	f.FormatResult(result)
	f.FormatError(errors.New("boom"))

	text := out.String()
	assert.Contains(t, text, "[1] GET http://x/users")
	assert.Contains(t, text, "✓ users (12ms)")
	assert.Contains(t, text, "✗ create (connection refused)")
	assert.Contains(t, text, "Batch: batch.yaml")
	assert.Contains(t, text, "Run:     run-1")
	assert.Contains(t, text, "1 succeeded, 1 failed, 1 not run, 3 total")
	assert.Contains(t, text, "Latency: p50=12ms")
	assert.Equal(t, "Error: boom\n", errOut.String())
}

func TestConsoleFormatter_DryRun(t *testing.T) {
	var out bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&out), WithNoColor(true))

	f.ActionFinished(&runner.ActionResult{
		Name:    "response",
		Action:  action.Action{URL: "http://x", Method: action.MethodDelete},
		Skipped: true,
	})
	assert.Contains(t, out.String(), "- response DELETE http://x (dry run)")
}

func TestJSONFormatter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&out), JSONWithErrWriter(&errOut))

	result, actions := sampleRun()
	for _, a := range actions {
		f.ActionStarted(a.Index, a.Action)
		f.ActionFinished(a)
	}
	f.FormatResult(result)
	f.FormatError(errors.New("boom"))
	require.NoError(t, f.Flush())

	var doc JSONOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, 3, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.NotRun)
	require.Len(t, doc.Actions, 2)
	assert.True(t, doc.Actions[0].Passed)
	assert.Equal(t, "GET", doc.Actions[0].Method)
	assert.Equal(t, 11, doc.Actions[0].Bytes)
	assert.Equal(t, "connection refused", doc.Actions[1].Error)
	require.NotNil(t, doc.Latency)
	assert.Equal(t, 12.0, doc.Latency.P50)
	assert.Equal(t, []string{"boom"}, doc.Errors)
	assert.Contains(t, errOut.String(), "boom")
}

func TestNew(t *testing.T) {
	var out bytes.Buffer
	f, err := New("console", &out, &out, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = New("JSON", &out, &out, false, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = New("junit", &out, &out, false, true)
	assert.Error(t, err)
}
