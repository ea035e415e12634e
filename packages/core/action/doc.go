// Package action defines the declarative request model shared by the
// loader, the executor and the batch runner.
//
// An Action is one request as written in a batch file: a URL, a method
// from a closed set, optional headers and an optional JSON body. Method
// values are parsed once, so an unsupported method can never reach the
// network layer.
package action
