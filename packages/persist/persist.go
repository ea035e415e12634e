package persist

import (
	"errors"
	"fmt"
)

// Persister stores one response body under a label.
type Persister interface {
	Persist(content, label string) error
}

// WriteError is returned when a response cannot be stored.
type WriteError struct {
	Label string
	// Path is the file or database the response was written to.
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persisting %q to %s: %v", e.Label, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Multi fans a response out to several persisters. Every persister is
// called; failures are joined.
type Multi []Persister

func (m Multi) Persist(content, label string) error {
	var errs []error
	for _, p := range m {
		if err := p.Persist(content, label); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every response.
type Discard struct{}

func (Discard) Persist(string, string) error { return nil }
