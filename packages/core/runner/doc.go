// Package runner executes batches of actions.
//
// Actions run strictly one after another in the order they were loaded.
// Each successful response is handed to a persister before the next
// action starts. What happens after a failure is decided by the failure
// policy:
//   - halt (default): the first failure stops the batch and is returned
//   - continue: every action runs and all failures are returned together
package runner
