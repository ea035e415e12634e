package action

import "fmt"

// UnsupportedMethodError is returned when a method outside the closed
// set is supplied.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q (expected one of GET, POST, PUT, PATCH, DELETE)", e.Method)
}
