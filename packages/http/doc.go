// Package http executes single fesi requests.
//
// A RequestSpec is the resolved view of one action. Client.Execute turns
// it into exactly one network call and returns the response body as text:
//   - GET and DELETE never carry a body
//   - POST, PUT and PATCH send the body mapping as a JSON object
//   - header names and values are validated before anything is sent
//   - any status code is a successful execution; only transport failures
//     are errors
package http
