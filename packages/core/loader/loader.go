package loader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// InlineSource names documents that were not read from a file.
const InlineSource = "<inline>"

const (
	excerptLines    = 5
	excerptMaxBytes = 400
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

var errInvalidShape = errors.New("document does not match the batch file schema")

type document struct {
	Actions []yamlAction `yaml:"actions"`
}

type yamlAction struct {
	Name   string            `yaml:"name"`
	URL    string            `yaml:"url"`
	Method string            `yaml:"method"`
	Header map[string]string `yaml:"header"`
	Body   map[string]string `yaml:"body"`
}

// Load reads the batch file at path and returns its actions in file order.
func Load(path string) ([]action.Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return LoadBytes(data, path)
}

// LoadString is LoadBytes for raw YAML text.
func LoadString(text string) ([]action.Action, error) {
	return LoadBytes([]byte(text), InlineSource)
}

// LoadBytes decodes a batch document. source is used in diagnostics.
func LoadBytes(data []byte, source string) ([]action.Action, error) {
	if source == "" {
		source = InlineSource
	}
	parseErr := func(field string, err error, problems ...string) *ParseError {
		return &ParseError{
			Source:   source,
			Field:    field,
			Problems: problems,
			Excerpt:  excerpt(data),
			Err:      err,
		}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, parseErr("", err)
	}
	if raw == nil {
		return nil, parseErr("", errors.New("document is empty"))
	}

	if problems, err := validateShape(raw); err != nil {
		return nil, parseErr("", err)
	} else if len(problems) > 0 {
		return nil, parseErr("", errInvalidShape, problems...)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, parseErr("", err)
	}

	actions := make([]action.Action, 0, len(doc.Actions))
	for i, ya := range doc.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		if strings.TrimSpace(ya.URL) == "" {
			return nil, parseErr(field+".url", errors.New("url is required"))
		}
		method, err := action.ParseMethod(ya.Method)
		if err != nil {
			return nil, parseErr(field+".method", err)
		}
		a := action.Action{
			Name:   ya.Name,
			URL:    strings.TrimSpace(ya.URL),
			Method: method,
			Header: ya.Header,
			Body:   ya.Body,
		}
		if a.Header == nil {
			a.Header = map[string]string{}
		}
		if a.Body == nil {
			a.Body = map[string]string{}
		}
		actions = append(actions, a)
	}

	return actions, nil
}

// validateShape checks the decoded document against the embedded schema.
// It returns the list of violations, or an error if validation could not run.
func validateShape(raw any) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(normalize(raw)))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return problems, nil
}

// normalize converts YAML mappings with non-string keys so the document
// can be handed to the JSON schema validator.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

func excerpt(data []byte) string {
	lines := strings.SplitN(string(data), "\n", excerptLines+1)
	if len(lines) > excerptLines {
		lines = lines[:excerptLines]
	}
	s := strings.Join(lines, "\n")
	if len(s) > excerptMaxBytes {
		s = s[:excerptMaxBytes] + "..."
	}
	return s
}
