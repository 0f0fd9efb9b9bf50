// Package matchers provides the predicates used by response specifications.
//
// A Matcher tests a value and describes what it expects:
//   - Equality (EqualTo, OneOf)
//   - String checks (ContainsString, StartsWith, EndsWith, MatchesPattern)
//   - Presence (NullValue, NotNullValue)
//   - Collections (HasItem, HasLength)
//   - Numeric comparisons (GreaterThan, LessThanOrEqualTo, ...)
//   - JSON types (IsType) and JSON Schema (MatchesJSONSchema)
//   - Composition (Not, AllOf, AnyOf) and custom predicates (Predicate)
//
// Any gomega matcher can be used through Gomega.
package matchers
