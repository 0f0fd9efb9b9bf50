// Package jsonpath extracts values from JSON response bodies.
//
// Paths use the dot/bracket notation common in API tests:
//   - greeting
//   - user.name
//   - items[0].id
//   - items[*].id (every id, as a list)
//   - $ or the empty path for the whole document
//
// A leading "$." is accepted and ignored. Lookups are evaluated with gjson.
package jsonpath
