// Package output renders batch runs for the terminal.
//
// Supported output formats:
//   - Console: human-readable colored terminal output, streamed per action
//   - JSON: machine-readable summary written once the run is over
//
// Both formatters observe a run through runner.Listener and receive the
// final runner.RunResult through FormatResult.
package output
