// Package cmd implements the fesi CLI commands using Cobra.
//
// Available commands:
//   - run: Send a single request described by flags
//   - file: Run every action of a YAML batch file in order
//   - init: Create the FESI project directory
//   - validate: Check batch files without executing them
//   - list: Display the actions defined in a batch file
//   - import: Convert curl commands into a batch file
//   - history: Show responses recorded in the history database
//   - version: Show fesi version information
package cmd
