package http

import "fmt"

// InvalidHeaderError reports a header whose name or value is not valid
// HTTP header syntax. No request is sent when it is returned.
type InvalidHeaderError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid header %q: %s", e.Name, e.Reason)
}

// RequestError wraps a transport failure: connection, DNS, TLS, timeout
// or reading the response body.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
