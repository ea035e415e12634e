package cmd

import (
	"errors"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/config"
	"github.com/fesi-dev/fesi/packages/core/loader"
	"github.com/fesi-dev/fesi/packages/http"
	"github.com/fesi-dev/fesi/packages/persist"
)

// Exit codes for fesi CLI
const (
	// ExitSuccess indicates every request succeeded
	ExitSuccess = 0

	// ExitFailure indicates one or more actions failed
	ExitFailure = 1

	// ExitParseError indicates a batch file could not be read or parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitWriteError indicates a response could not be persisted
	ExitWriteError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// usageError marks mistakes in how the CLI was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// reportedError wraps an error a formatter has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usageErr  *usageError
		methodErr *action.UnsupportedMethodError
		fileErr   *loader.FileReadError
		parseErr  *loader.ParseError
		configErr *config.Error
		writeErr  *persist.WriteError
		reqErr    *http.RequestError
	)
	switch {
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &fileErr), errors.As(err, &parseErr):
		return ExitParseError
	case errors.As(err, &methodErr):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &writeErr):
		return ExitWriteError
	case errors.As(err, &reqErr):
		return ExitNetworkError
	default:
		return ExitFailure
	}
}
