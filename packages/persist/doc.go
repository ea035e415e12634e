// Package persist stores response bodies produced by a batch run.
//
// FileStore writes one text file per response, named after the unix
// timestamp and the action label. SQLiteStore keeps a queryable history
// of responses grouped by run.
package persist
