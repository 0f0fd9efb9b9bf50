// Package chain builds HTTP requests and verifies their responses with a
// fluent given/when/then API.
//
// A chain starts with Given, With or Expect, accumulates request state on a
// RequestSpec and expectations on a ResponseSpec, and ends with exactly one
// verb call:
//
//	_, err := chain.Given().
//		Params("firstName", "John", "lastName", "Doe").
//		Expect().
//		StatusCode(200).
//		BodyAt("greeting", matchers.EqualTo("Greetings John Doe")).
//		When().
//		Post("/greet")
//
// Checks run in registration order and stop at the first failure, which is
// returned as *AssertionError. The response is returned alongside the error
// so it can still be inspected.
//
// The package-level functions read their defaults from config.Defaults,
// which is shared and unsynchronized. Concurrent tests should each create a
// Client with New and an explicit configuration.
package chain
