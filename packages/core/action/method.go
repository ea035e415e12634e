package action

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Method is the closed set of HTTP methods fesi can execute.
// The zero value is not a valid method.
type Method int

const (
	MethodInvalid Method = iota
	MethodGet
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
)

var methodNames = map[Method]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPut:    "PUT",
	MethodPatch:  "PATCH",
	MethodDelete: "DELETE",
}

// Methods lists the supported methods in a stable order.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == upper {
			return m, nil
		}
	}
	return MethodInvalid, &UnsupportedMethodError{Method: s}
}

// String returns the canonical upper-case method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "INVALID"
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// HasBody reports whether requests with this method carry a JSON body.
func (m Method) HasBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	default:
		return false
	}
}

func (m *Method) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Method) MarshalYAML() (any, error) {
	return m.String(), nil
}
