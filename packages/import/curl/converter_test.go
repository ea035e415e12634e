package curl

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/loader"
)

func TestParse_SimpleGet(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Method != "GET" {
		t.Errorf("expected method GET, got %s", parsed.Method)
	}
	if parsed.URL != "https://api.example.com/users" {
		t.Errorf("expected URL https://api.example.com/users, got %s", parsed.URL)
	}
	if parsed.Name != "get-users" {
		t.Errorf("expected name get-users, got %s", parsed.Name)
	}
}

func TestParse_DataImpliesPost(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl https://api.example.com/users -d '{"name":"John"}'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Method != "POST" {
		t.Errorf("expected method POST, got %s", parsed.Method)
	}
	if parsed.Body != `{"name":"John"}` {
		t.Errorf("expected body {\"name\":\"John\"}, got %s", parsed.Body)
	}

	parsed, err = converter.Parse(`curl -X PUT https://api.example.com/users/1 -d 'a=1'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Method != "PUT" {
		t.Errorf("explicit method must win, got %s", parsed.Method)
	}
}

func TestParse_WithHeaders(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl -H "Accept: application/json" -H "Authorization: Bearer token123" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Headers["Accept"] != "application/json" {
		t.Errorf("expected Accept: application/json, got %s", parsed.Headers["Accept"])
	}
	if parsed.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("expected Authorization: Bearer token123, got %s", parsed.Headers["Authorization"])
	}
}

func TestParse_Errors(t *testing.T) {
	converter := NewConverter()

	for _, cmd := range []string{"curl", "curl -X POST", "curl https://api.example.com -H"} {
		if _, err := converter.Parse(cmd); err == nil {
			t.Errorf("expected error for %q", cmd)
		}
	}
}

func TestToAction_JSONBody(t *testing.T) {
	converter := NewConverter()

	a, err := converter.ConvertCommand(`curl -X PATCH https://api.example.com/users/1 -H 'Content-Type: application/json' -d '{"name":"Ana","age":30,"admin":true}'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Method != action.MethodPatch {
		t.Errorf("expected PATCH, got %s", a.Method)
	}
	want := map[string]string{"name": "Ana", "age": "30", "admin": "true"}
	if !reflect.DeepEqual(a.Body, want) {
		t.Errorf("expected body %v, got %v", want, a.Body)
	}
	if _, ok := a.Header["Content-Type"]; ok {
		t.Error("Content-Type must be dropped")
	}
	if a.Name != "patch-users-1" {
		t.Errorf("expected name patch-users-1, got %s", a.Name)
	}
}

func TestToAction_FormBodyAndBasicAuth(t *testing.T) {
	converter := NewConverter(WithNames(false))

	a, err := converter.ConvertCommand(`curl -u admin:secret https://api.example.com/login -d user=ana -d lang=go`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Name != "" {
		t.Errorf("expected no name, got %s", a.Name)
	}
	if a.Body["user"] != "ana" || a.Body["lang"] != "go" {
		t.Errorf("unexpected body %v", a.Body)
	}
	// base64("admin:secret")
	if got := a.Header["Authorization"]; got != "Basic YWRtaW46c2VjcmV0" {
		t.Errorf("unexpected Authorization header %q", got)
	}
}

func TestToAction_Rejects(t *testing.T) {
	converter := NewConverter()

	tests := map[string]string{
		"nested body":        `curl https://x.io -d '{"user":{"name":"a"}}'`,
		"array body":         `curl https://x.io -d '[1,2]'`,
		"unsupported method": `curl -X HEAD https://x.io`,
	}
	for name, cmd := range tests {
		if _, err := converter.ConvertCommand(cmd); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestConvertReader_RoundTripsThroughLoader(t *testing.T) {
	input := `# exported from the browser
curl https://api.example.com/users

curl -X POST https://api.example.com/users \
  -H 'X-Trace: 1' \
  -d '{"name":"Ana"}'
`
	actions, err := NewConverter().ConvertReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}

	data, err := Marshal(actions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := loader.LoadBytes(data, "converted.yaml")
	if err != nil {
		t.Fatalf("converted output does not load: %v\n%s", err, data)
	}

	if loaded[1].Method != action.MethodPost || loaded[1].Body["name"] != "Ana" || loaded[1].Header["X-Trace"] != "1" {
		t.Errorf("unexpected second action: %+v", loaded[1])
	}
	if loaded[0].URL != "https://api.example.com/users" {
		t.Errorf("unexpected first action: %+v", loaded[0])
	}
}

func TestConvertReader_Empty(t *testing.T) {
	if _, err := NewConverter().ConvertReader(strings.NewReader("# nothing\n\n")); err == nil {
		t.Error("expected error for input without commands")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{`https://x.io`, []string{"https://x.io"}},
		{`-H "A: b c" https://x.io`, []string{"-H", "A: b c", "https://x.io"}},
		{`-d '{"a":"b"}'`, []string{"-d", `{"a":"b"}`}},
		{`-d 'a\nb'`, []string{"-d", `a\nb`}},
		{`-d a\ b`, []string{"-d", "a b"}},
	}

	for _, tt := range tests {
		got := tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("tokenize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGenerateName(t *testing.T) {
	tests := []struct {
		url, method, expected string
	}{
		{"https://api.example.com", "GET", "get-root"},
		{"https://api.example.com/users/", "POST", "post-users"},
		{"https://api.example.com/v1/user_profiles?x=1", "DELETE", "delete-v1-user-profiles"},
	}

	for _, tt := range tests {
		if got := generateName(tt.url, tt.method); got != tt.expected {
			t.Errorf("generateName(%q, %q) = %q, want %q", tt.url, tt.method, got, tt.expected)
		}
	}
}
