package loader

import (
	"fmt"
	"strings"
)

// FileReadError is returned when a batch file cannot be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading batch file %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a document is not well-formed YAML or does
// not have the expected shape.
type ParseError struct {
	// Source is the file path, or "<inline>" for raw text.
	Source string
	// Field is the offending field path (e.g. "actions[2].method") when known.
	Field string
	// Problems lists every schema violation found.
	Problems []string
	// Excerpt holds the first lines of the document.
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parsing ")
	sb.WriteString(e.Source)
	if e.Field != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Field)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
