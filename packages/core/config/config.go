package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "FESI"

	StoreFiles  = "files"
	StoreSQLite = "sqlite"
	StoreBoth   = "both"
	StoreNone   = "none"
)

// Config represents the fesi configuration
type Config struct {
	Timeout   time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	OnError   string            `mapstructure:"on_error" yaml:"on_error"`
	Store     string            `mapstructure:"store" yaml:"store"`
	OutputDir string            `mapstructure:"output_dir" yaml:"output_dir"`
	HistoryDB string            `mapstructure:"history_db" yaml:"history_db"`
	Output    string            `mapstructure:"output" yaml:"output"`
	UserAgent string            `mapstructure:"user_agent" yaml:"user_agent"`
	Headers   map[string]string `mapstructure:"headers" yaml:"headers,omitempty"` // Default headers for all requests
	NoColor   bool              `mapstructure:"no_color" yaml:"no_color"`
	Verbose   bool              `mapstructure:"verbose" yaml:"verbose"`
}

// Error reports an unusable configuration.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	"fesi.yaml",
	"fesi.yml",
	".fesi.yaml",
}

// SearchDirs are searched in order when no config path is given.
var SearchDirs = []string{"FESI", "."}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"timeout":    "timeout",
	"on_error":   "on-error",
	"store":      "store",
	"output_dir": "output-dir",
	"history_db": "history-db",
	"output":     "output",
	"no_color":   "no-color",
	"verbose":    "verbose",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:   0, // transport default: no deadline
		OnError:   "halt",
		Store:     StoreFiles,
		OutputDir: "FESI/response",
		HistoryDB: "FESI/history.db",
		Output:    "console",
		UserAgent: "fesi",
	}
}

// Load resolves the configuration. path may be empty to search
// SearchDirs. Flags that were explicitly set in flags take precedence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("on_error", defaults.OnError)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("history_db", defaults.HistoryDB)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("no_color", defaults.NoColor)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = FindConfigFile(SearchDirs...)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Path: path, Err: err}
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &Error{Path: path, Err: err}
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// FindConfigFile returns the first config file found in dirs, or "".
func FindConfigFile(dirs ...string) string {
	for _, dir := range dirs {
		for _, filename := range ConfigFilenames {
			configPath := filepath.Join(dir, filename)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}
	}
	return ""
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	switch strings.ToLower(c.OnError) {
	case "halt", "continue":
	default:
		errs = append(errs, fmt.Errorf("on_error must be halt or continue, got %q", c.OnError))
	}
	switch strings.ToLower(c.Store) {
	case StoreFiles, StoreSQLite, StoreBoth, StoreNone:
	default:
		errs = append(errs, fmt.Errorf("store must be one of files, sqlite, both, none, got %q", c.Store))
	}
	switch strings.ToLower(c.Output) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("output must be console or json, got %q", c.Output))
	}
	return errors.Join(errs...)
}

// UsesFiles reports whether responses are written as text files.
func (c *Config) UsesFiles() bool {
	s := strings.ToLower(c.Store)
	return s == StoreFiles || s == StoreBoth
}

// UsesSQLite reports whether responses are recorded in the history database.
func (c *Config) UsesSQLite() bool {
	s := strings.ToLower(c.Store)
	return s == StoreSQLite || s == StoreBoth
}

// SaveConfig saves the configuration to a YAML file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c.fileView())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// fileView renders durations as strings so the saved file reads back.
func (c *Config) fileView() map[string]any {
	m := map[string]any{
		"timeout":    c.Timeout.String(),
		"on_error":   c.OnError,
		"store":      c.Store,
		"output_dir": c.OutputDir,
		"history_db": c.HistoryDB,
		"output":     c.Output,
		"user_agent": c.UserAgent,
		"no_color":   c.NoColor,
		"verbose":    c.Verbose,
	}
	if len(c.Headers) > 0 {
		m["headers"] = c.Headers
	}
	return m
}
