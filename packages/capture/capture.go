package capture

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotJSON is returned when a path is applied to a non-JSON body.
var ErrNotJSON = errors.New("response body is not valid JSON")

// PathNotFoundError is returned when a path matches nothing.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q not found in response body", e.Path)
}

// Select returns the value at path. Strings are returned unquoted; other
// values are returned as raw JSON. An empty path returns the body as is.
func Select(body, path string) (string, error) {
	if path == "" {
		return body, nil
	}
	if !gjson.Valid(body) {
		return "", ErrNotJSON
	}

	result := gjson.Get(body, path)
	if !result.Exists() {
		return "", &PathNotFoundError{Path: path}
	}
	if result.Type == gjson.String {
		return result.Str, nil
	}
	return result.Raw, nil
}

// Pretty indents JSON bodies. Anything else is returned untouched.
func Pretty(body string) string {
	if !gjson.Valid(body) {
		return body
	}
	return gjson.Get(body, "@pretty").Raw
}
