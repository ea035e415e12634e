package http

import (
	"encoding/json"
	"sort"

	"github.com/fesi-dev/fesi/packages/core/action"
	"golang.org/x/net/http/httpguts"
)

// RequestSpec is one fully resolved request.
type RequestSpec struct {
	Name    string
	Method  action.Method
	URL     string
	Headers map[string]string
	Body    map[string]string
}

func NewRequestSpec(method action.Method, url string) *RequestSpec {
	return &RequestSpec{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
		Body:    make(map[string]string),
	}
}

// FromAction builds the request for a loaded action. The action's maps
// are copied.
func FromAction(a action.Action) *RequestSpec {
	c := a.Clone()
	return &RequestSpec{
		Name:    c.Name,
		Method:  c.Method,
		URL:     c.URL,
		Headers: c.Header,
		Body:    c.Body,
	}
}

func (r *RequestSpec) SetName(name string) *RequestSpec {
	r.Name = name
	return r
}

func (r *RequestSpec) SetHeader(key, value string) *RequestSpec {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *RequestSpec) SetBodyField(key, value string) *RequestSpec {
	if r.Body == nil {
		r.Body = make(map[string]string)
	}
	r.Body[key] = value
	return r
}

// Label names the persisted output of this request.
func (r *RequestSpec) Label() string {
	if r.Name == "" {
		return action.DefaultName
	}
	return r.Name
}

// Validate checks the method and every header. It never touches the network.
func (r *RequestSpec) Validate() error {
	if !r.Method.Valid() {
		return &action.UnsupportedMethodError{Method: r.Method.String()}
	}
	return ValidateHeaders(r.Headers)
}

// Payload returns the JSON request body, or nil for methods without one.
func (r *RequestSpec) Payload() ([]byte, error) {
	if !r.Method.HasBody() {
		return nil, nil
	}
	body := r.Body
	if body == nil {
		body = map[string]string{}
	}
	return json.Marshal(body)
}

// ValidateHeaders checks header names and values against HTTP syntax.
// Headers are checked in name order so the reported header is stable.
func ValidateHeaders(headers map[string]string) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := headers[name]
		if !httpguts.ValidHeaderFieldName(name) {
			return &InvalidHeaderError{Name: name, Value: value, Reason: "invalid header name"}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return &InvalidHeaderError{Name: name, Value: value, Reason: "invalid header value"}
		}
	}
	return nil
}
