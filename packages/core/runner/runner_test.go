package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fesi-dev/fesi/packages/core/action"
	"github.com/fesi-dev/fesi/packages/core/loader"
	fesihttp "github.com/fesi-dev/fesi/packages/http"
	"github.com/fesi-dev/fesi/packages/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type persisted struct {
	Label   string
	Content string
}

type memPersister struct {
	entries []persisted
	err     error
}

func (m *memPersister) Persist(content, label string) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, persisted{Label: label, Content: content})
	return nil
}

type recordingListener struct {
	started  []int
	finished []*ActionResult
}

func (l *recordingListener) ActionStarted(index int, _ action.Action) {
	l.started = append(l.started, index)
}

func (l *recordingListener) ActionFinished(result *ActionResult) {
	l.finished = append(l.finished, result)
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return "http://" + addr + "/"
}

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.executor)
		assert.NotNil(t, r.persister)
		assert.Equal(t, PolicyHalt, r.config.OnError)
	})

	t.Run("with custom config", func(t *testing.T) {
		r := NewRunner(&Config{OnError: PolicyContinue, RunID: "run-1"})
		assert.Equal(t, PolicyContinue, r.config.OnError)
		assert.Equal(t, "run-1", r.config.RunID)
	})
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyHalt, p)

	p, err = ParsePolicy("Continue")
	require.NoError(t, err)
	assert.Equal(t, PolicyContinue, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}

func TestRunner_EndToEnd_EchoPersistsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var got map[string]string
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, map[string]string{"a": "1"}, got)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	actions, err := loader.LoadString(`actions:
  - {url: "` + server.URL + `/echo", method: "POST", body: {a: "1"}}
`)
	require.NoError(t, err)

	mem := &memPersister{}
	result, err := NewRunner(nil, WithPersister(mem)).Run(context.Background(), actions)

	require.NoError(t, err)
	assert.Equal(t, []persisted{{Label: "response", Content: "ok"}}, mem.entries)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, loader.InlineSource, result.Source)
	assert.Equal(t, int64(1), result.Latency.Count)
}

func TestRunner_RunsInFileOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	actions := []action.Action{
		{Name: "first", URL: server.URL + "/1", Method: action.MethodGet},
		{Name: "second", URL: server.URL + "/2", Method: action.MethodDelete},
		{Name: "third", URL: server.URL + "/3", Method: action.MethodPut},
	}

	mem := &memPersister{}
	listener := &recordingListener{}
	result, err := NewRunner(nil, WithPersister(mem), WithListener(listener)).Run(context.Background(), actions)

	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []string{"/1", "/2", "/3"}, order)
	mu.Unlock()
	assert.Equal(t, []persisted{
		{Label: "first", Content: "/1"},
		{Label: "second", Content: "/2"},
		{Label: "third", Content: "/3"},
	}, mem.entries)
	assert.Equal(t, []int{0, 1, 2}, listener.started)
	require.Len(t, listener.finished, 3)
	assert.True(t, listener.finished[2].Passed())
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Succeeded)
}

func TestRunner_HaltsOnFirstFailure(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok-" + r.URL.Path))
	}))
	defer server.Close()

	actions := []action.Action{
		{Name: "one", URL: server.URL + "/one", Method: action.MethodGet},
		{Name: "two", URL: unreachableURL(t), Method: action.MethodGet},
		{Name: "three", URL: server.URL + "/three", Method: action.MethodGet},
	}

	mem := &memPersister{}
	result, err := NewRunner(nil, WithPersister(mem)).Run(context.Background(), actions)

	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, 1, actionErr.Index)
	assert.Equal(t, "two", actionErr.Name)

	var reqErr *fesihttp.RequestError
	assert.ErrorAs(t, err, &reqErr)

	assert.Equal(t, []persisted{{Label: "one", Content: "ok-/one"}}, mem.entries)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.NotRun)
	assert.Len(t, result.Results, 2)
}

func TestRunner_ContinueOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	bad := unreachableURL(t)
	actions := []action.Action{
		{Name: "one", URL: bad, Method: action.MethodGet},
		{Name: "two", URL: server.URL, Method: action.MethodGet},
		{Name: "three", URL: server.URL, Method: action.MethodGet, Header: map[string]string{"Bad Header": "x"}},
		{Name: "four", URL: server.URL, Method: action.MethodPost},
	}

	mem := &memPersister{}
	result, err := NewRunner(&Config{OnError: PolicyContinue}, WithPersister(mem)).Run(context.Background(), actions)

	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 2)
	assert.Equal(t, "one", batchErr.First().Name)
	assert.Equal(t, 2, batchErr.Failures[1].Index)

	var headerErr *fesihttp.InvalidHeaderError
	assert.ErrorAs(t, err, &headerErr)

	assert.Equal(t, []persisted{{Label: "two", Content: "ok"}, {Label: "four", Content: "ok"}}, mem.entries)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.NotRun)
	assert.Contains(t, err.Error(), "2 of 4 actions failed")
}

func TestRunner_PersistFailureHalts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	writeErr := &persist.WriteError{Label: "response", Path: "/nope", Err: errors.New("disk full")}
	actions := []action.Action{
		{URL: server.URL, Method: action.MethodGet},
		{URL: server.URL, Method: action.MethodGet},
	}

	result, err := NewRunner(nil, WithPersister(&memPersister{err: writeErr})).Run(context.Background(), actions)

	var got *persist.WriteError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.NotRun)
}

func TestRunner_DryRun(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	mem := &memPersister{}
	actions := []action.Action{{URL: server.URL, Method: action.MethodGet}}
	result, err := NewRunner(&Config{DryRun: true}, WithPersister(mem)).Run(context.Background(), actions)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, mem.entries)
	assert.Equal(t, int32(0), hits.Load())
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actions := []action.Action{{URL: "http://example.invalid", Method: action.MethodGet}}
	result, err := NewRunner(nil, WithPersister(&memPersister{})).Run(ctx, actions)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.NotRun)
	assert.Empty(t, result.Results)
}

func TestRunner_RunFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "batch.yaml")
	content := "actions:\n  - name: health\n    url: " + server.URL + "/health\n    method: get\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	store := persist.NewFileStore(filepath.Join(tmpDir, "FESI", "response"))
	result, err := NewRunner(&Config{RunID: "fixed"}, WithPersister(store)).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "fixed", result.RunID)
	assert.Equal(t, path, result.Source)

	files, err := filepath.Glob(filepath.Join(store.Dir(), "*_health.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, `{"status": "ok"}`, string(data))
}

func TestRunner_RunFile_LoadError(t *testing.T) {
	result, err := NewRunner(nil).RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Nil(t, result)
	var readErr *loader.FileReadError
	assert.ErrorAs(t, err, &readErr)
}
