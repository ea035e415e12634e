package runner

import (
	"fmt"
	"strings"
)

// ActionError ties a failure to the action that produced it.
type ActionError struct {
	Index int
	Name  string
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// BatchError collects every failure of a batch run with the continue policy.
type BatchError struct {
	Total    int
	Failures []*ActionError
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d actions failed", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		sb.WriteString("\n  - ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// First returns the earliest failure.
func (e *BatchError) First() *ActionError {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0]
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
