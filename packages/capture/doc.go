// Package capture extracts values from response bodies.
//
// Paths use gjson syntax, for example "data.items.0.id" or
// "users.#.name".
package capture
