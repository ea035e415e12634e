package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ProjectDir is the directory created by "fesi init".
	ProjectDir = "FESI"
	// DefaultResponseDir is where FileStore writes when no directory is given.
	DefaultResponseDir = ProjectDir + "/response"
)

// FileStore writes each response to {unix_timestamp}_{label}.txt.
type FileStore struct {
	dir string
	now func() time.Time
}

type FileOption func(*FileStore)

// WithClock replaces the time source used for file names.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

func NewFileStore(dir string, opts ...FileOption) *FileStore {
	if dir == "" {
		dir = DefaultResponseDir
	}
	s := &FileStore{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) Dir() string {
	return s.dir
}

// FileName returns the file name used for label at time t.
func FileName(t time.Time, label string) string {
	return fmt.Sprintf("%d_%s.txt", t.Unix(), sanitizeLabel(label))
}

func (s *FileStore) Persist(content, label string) error {
	path := filepath.Join(s.dir, FileName(s.now(), label))
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &WriteError{Label: label, Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &WriteError{Label: label, Path: path, Err: err}
	}
	return nil
}

// sanitizeLabel keeps labels from escaping the response directory.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "response"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(label)
}
