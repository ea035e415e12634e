// Package curl converts curl command lines into fesi batch actions.
package curl

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Converter converts curl commands to fesi actions.
type Converter struct {
	generateNames bool
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithNames configures whether actions are named after their method and path.
func WithNames(generate bool) Option {
	return func(c *Converter) {
		c.generateNames = generate
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		generateNames: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParsedCurl represents a parsed curl command.
type ParsedCurl struct {
	Method    string
	URL       string
	Headers   map[string]string
	Body      string
	BasicAuth string
	Name      string
}

// ConvertCommand converts a single curl command to an action.
func (c *Converter) ConvertCommand(curlCmd string) (action.Action, error) {
	parsed, err := c.Parse(curlCmd)
	if err != nil {
		return action.Action{}, err
	}
	return c.ToAction(parsed)
}

// ConvertReader converts every curl command read from r, in order.
func (c *Converter) ConvertReader(r io.Reader) ([]action.Action, error) {
	commands, err := SplitCommands(r)
	if err != nil {
		return nil, err
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("no curl commands found")
	}

	actions := make([]action.Action, 0, len(commands))
	for i, cmd := range commands {
		a, err := c.ConvertCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ConvertFile converts a file containing curl commands.
func (c *Converter) ConvertFile(path string) ([]action.Action, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return c.ConvertReader(file)
}

// SplitCommands reads one command per line, joining lines that end in a
// backslash. Blank lines and # comments are skipped.
func SplitCommands(r io.Reader) ([]string, error) {
	var commands []string
	var currentCmd strings.Builder
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}

		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}

	if currentCmd.Len() > 0 {
		commands = append(commands, strings.TrimSpace(currentCmd.String()))
	}
	return commands, nil
}

// Parse parses a curl command string into a ParsedCurl struct.
func (c *Converter) Parse(curlCmd string) (*ParsedCurl, error) {
	parsed := &ParsedCurl{
		Method:  "GET",
		Headers: make(map[string]string),
	}
	explicitMethod := false

	curlCmd = strings.TrimSpace(curlCmd)
	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	curlCmd = strings.TrimPrefix(curlCmd, "curl ")

	tokens := tokenize(curlCmd)

	value := func(i int) (string, error) {
		if i+1 < len(tokens) {
			return tokens[i+1], nil
		}
		return "", fmt.Errorf("missing value for %s", tokens[i])
	}

	i := 0
	for i < len(tokens) {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Method = strings.ToUpper(v)
			explicitMethod = true
			i += 2

		case "-H", "--header":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			if key, val, ok := strings.Cut(v, ":"); ok {
				parsed.Headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
			}
			i += 2

		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			// Repeated data flags are joined like curl does.
			if parsed.Body != "" {
				parsed.Body += "&"
			}
			parsed.Body += v
			if !explicitMethod {
				parsed.Method = "POST"
			}
			i += 2

		case "--json":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Body = v
			parsed.Headers["Content-Type"] = "application/json"
			if !explicitMethod {
				parsed.Method = "POST"
			}
			i += 2

		case "-u", "--user":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.BasicAuth = v
			i += 2

		case "-A", "--user-agent":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Headers["User-Agent"] = v
			i += 2

		case "-e", "--referer":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Headers["Referer"] = v
			i += 2

		case "-b", "--cookie":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Headers["Cookie"] = v
			i += 2

		case "--url":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.URL = v
			i += 2

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				// Skip unknown flags with potential values
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i += 2
				} else {
					i++
				}
			default:
				if parsed.URL == "" && isURL(token) {
					parsed.URL = token
				}
				i++
			}
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	if c.generateNames {
		parsed.Name = generateName(parsed.URL, parsed.Method)
	}

	return parsed, nil
}

// ToAction converts a ParsedCurl to an action. Bodies must be a flat JSON
// object or form data, since action bodies are string maps.
func (c *Converter) ToAction(parsed *ParsedCurl) (action.Action, error) {
	method, err := action.ParseMethod(parsed.Method)
	if err != nil {
		return action.Action{}, err
	}

	a := action.Action{
		Name:   parsed.Name,
		URL:    parsed.URL,
		Method: method,
		Header: make(map[string]string, len(parsed.Headers)),
		Body:   make(map[string]string),
	}
	for k, v := range parsed.Headers {
		// fesi always sends JSON bodies.
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		a.Header[k] = v
	}
	if parsed.BasicAuth != "" {
		a.Header["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(parsed.BasicAuth))
	}

	if parsed.Body != "" {
		body, err := flattenBody(parsed.Body)
		if err != nil {
			return action.Action{}, err
		}
		a.Body = body
	}
	return a, nil
}

func flattenBody(body string) (map[string]string, error) {
	out := make(map[string]string)

	if gjson.Valid(body) {
		result := gjson.Parse(body)
		if !result.IsObject() {
			return nil, fmt.Errorf("JSON body must be an object, got %s", result.Type)
		}
		var err error
		result.ForEach(func(key, value gjson.Result) bool {
			switch {
			case value.IsObject(), value.IsArray():
				err = fmt.Errorf("body field %q is nested; only flat objects are supported", key.String())
				return false
			case value.Type == gjson.String:
				out[key.String()] = value.Str
			default:
				out[key.String()] = value.Raw
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("body is neither JSON nor form data: %w", err)
	}
	for k, v := range values {
		if k == "" {
			return nil, fmt.Errorf("body is neither JSON nor form data: %q", body)
		}
		out[k] = v[len(v)-1]
	}
	return out, nil
}

type document struct {
	Actions []action.Action `yaml:"actions"`
}

// Marshal renders actions as a batch file.
func Marshal(actions []action.Action) ([]byte, error) {
	return yaml.Marshal(document{Actions: actions})
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var urlPathPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)

// generateName builds an action name such as "get-users-1".
func generateName(rawURL, method string) string {
	path := "/"
	if matches := urlPathPattern.FindStringSubmatch(rawURL); len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}
	path = strings.NewReplacer("/", "-", "_", "-", ".", "-").Replace(path)

	return strings.ToLower(method) + "-" + strings.ToLower(path)
}
