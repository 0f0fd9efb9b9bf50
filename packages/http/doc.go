// Package http is the transport adapter used by hitchain chains.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts
//   - Redirect handling
//   - Ordered query, form and cookie parameters
//   - Raw byte bodies sent unmodified
//   - Basic, bearer and digest authentication
//   - Content type tokens (JSON, XML, URLENC, ...) and primary type matching
//
// Every exchange returns a normalized Response with the status, headers,
// cookies and body bytes already read.
package http
