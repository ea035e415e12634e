package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/loader"
	"github.com/fesi-dev/fesi/packages/http"
	"github.com/fesi-dev/fesi/packages/metrics"
	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/google/uuid"
)

// Policy decides what happens after an action fails.
type Policy string

const (
	PolicyHalt     Policy = "halt"
	PolicyContinue Policy = "continue"
)

// ParsePolicy accepts "halt" or "continue"; empty means halt.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyHalt:
		return PolicyHalt, nil
	case PolicyContinue:
		return PolicyContinue, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q (expected halt or continue)", s)
	}
}

// Executor runs one request and returns the response body.
type Executor interface {
	Execute(ctx context.Context, spec *http.RequestSpec) (string, error)
}

// Listener observes a run as it progresses.
type Listener interface {
	ActionStarted(index int, a action.Action)
	ActionFinished(result *ActionResult)
}

type Config struct {
	OnError Policy
	// RunID identifies the run; a UUID is generated when empty.
	RunID string
	// Source names where the actions came from, for reporting.
	Source string
	// DryRun reports the actions without executing them.
	DryRun bool
}

type Runner struct {
	executor  Executor
	persister persist.Persister
	listener  Listener
	config    *Config
}

type Option func(*Runner)

func WithExecutor(e Executor) Option {
	return func(r *Runner) {
		r.executor = e
	}
}

func WithPersister(p persist.Persister) Option {
	return func(r *Runner) {
		r.persister = p
	}
}

func WithListener(l Listener) Option {
	return func(r *Runner) {
		r.listener = l
	}
}

func NewRunner(cfg *Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.OnError == "" {
		cfg.OnError = PolicyHalt
	}

	r := &Runner{config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.executor == nil {
		r.executor = http.NewClient()
	}
	if r.persister == nil {
		r.persister = persist.NewFileStore("")
	}
	return r
}

type ActionResult struct {
	Index    int
	Name     string
	Action   action.Action
	Body     string
	Err      error
	Duration time.Duration
	Skipped  bool
}

// Passed reports whether the action was executed and persisted.
func (a *ActionResult) Passed() bool {
	return !a.Skipped && a.Err == nil
}

type RunResult struct {
	RunID     string
	Source    string
	Results   []*ActionResult
	Total     int
	Succeeded int
	Failed    int
	// NotRun counts actions never attempted because the batch halted.
	NotRun   int
	Skipped  int
	Duration time.Duration
	Latency  metrics.Summary
}

// RunFile loads the batch file at path and runs it.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	actions, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if r.config.Source == "" {
		r.config.Source = path
	}
	return r.Run(ctx, actions)
}

// Run executes actions in order. The returned RunResult is never nil and
// holds every attempted action, even when an error is returned.
func (r *Runner) Run(ctx context.Context, actions []action.Action) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	recorder := metrics.NewRecorder()

	runID := r.config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	source := r.config.Source
	if source == "" {
		source = loader.InlineSource
	}

	result := &RunResult{
		RunID:  runID,
		Source: source,
		Total:  len(actions),
	}
	finish := func() {
		result.Duration = time.Since(start)
		result.Latency = recorder.Summary()
	}

	var failures []*ActionError
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			result.NotRun = len(actions) - i
			finish()
			return result, &ActionError{Index: i, Name: a.Label(), Err: err}
		}

		if r.listener != nil {
			r.listener.ActionStarted(i, a)
		}

		actionResult := r.runAction(ctx, i, a, recorder)
		result.Results = append(result.Results, actionResult)

		if r.listener != nil {
			r.listener.ActionFinished(actionResult)
		}

		switch {
		case actionResult.Skipped:
			result.Skipped++
			continue
		case actionResult.Err == nil:
			result.Succeeded++
			continue
		}

		result.Failed++
		failure := &ActionError{Index: i, Name: actionResult.Name, Err: actionResult.Err}
		if r.config.OnError == PolicyHalt {
			result.NotRun = len(actions) - i - 1
			finish()
			return result, failure
		}
		failures = append(failures, failure)
	}

	finish()
	if len(failures) > 0 {
		return result, &BatchError{Total: len(actions), Failures: failures}
	}
	return result, nil
}

func (r *Runner) runAction(ctx context.Context, index int, a action.Action, recorder *metrics.Recorder) *ActionResult {
	spec := http.FromAction(a)
	res := &ActionResult{
		Index:  index,
		Name:   spec.Label(),
		Action: a,
	}

	if r.config.DryRun {
		res.Skipped = true
		return res
	}

	started := time.Now()
	body, err := r.executor.Execute(ctx, spec)
	res.Duration = time.Since(started)
	recorder.Record(res.Duration, err)
	if err != nil {
		res.Err = err
		return res
	}
	res.Body = body

	if err := r.persister.Persist(body, res.Name); err != nil {
		res.Err = err
	}
	return res
}
