package matchers

import "fmt"

// Matcher tests a value against an expectation.
type Matcher interface {
	Matches(actual any) bool
	Describe() string
}

// Optional is implemented by matchers that can be evaluated against a JSON
// path that does not resolve. The missing value is passed as nil.
type Optional interface {
	Matcher
	AllowsAbsent() bool
}

// AllowsAbsent reports whether m accepts a missing value.
func AllowsAbsent(m Matcher) bool {
	if o, ok := m.(Optional); ok {
		return o.AllowsAbsent()
	}
	return false
}

// Predicate wraps fn as a Matcher described by description.
func Predicate(description string, fn func(actual any) bool) Matcher {
	return &predicate{description: description, fn: fn}
}

type predicate struct {
	description string
	fn          func(actual any) bool
}

func (p *predicate) Matches(actual any) bool {
	return p.fn(actual)
}

func (p *predicate) Describe() string {
	return p.description
}

// describeValue renders an expected value the way failure messages show it.
func describeValue(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
