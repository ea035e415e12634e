// Package config handles configuration loading and management for fesi.
//
// Settings are resolved from, in increasing order of precedence:
//   - built-in defaults
//   - a fesi.yaml file (FESI/fesi.yaml or ./fesi.yaml, or --config)
//   - FESI_* environment variables (FESI_TIMEOUT, FESI_ON_ERROR, ...)
//   - command-line flags bound with Load
package config
