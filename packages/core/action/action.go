package action

// DefaultName labels actions that do not declare a name.
const DefaultName = "response"

// Action is one declared request.
type Action struct {
	Name   string            `yaml:"name,omitempty"`
	URL    string            `yaml:"url"`
	Method Method            `yaml:"method"`
	Header map[string]string `yaml:"header,omitempty"`
	Body   map[string]string `yaml:"body,omitempty"`
}

// Label returns the declared name, or DefaultName when none was given.
func (a Action) Label() string {
	if a.Name == "" {
		return DefaultName
	}
	return a.Name
}

// Clone returns a deep copy so callers can hand out actions without
// sharing the underlying maps.
func (a Action) Clone() Action {
	c := a
	c.Header = cloneMap(a.Header)
	c.Body = cloneMap(a.Body)
	return c
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
