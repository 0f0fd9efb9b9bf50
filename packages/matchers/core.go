package matchers

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// EqualTo matches values equal to expected. JSON numbers decode as float64,
// so numeric values compare by value regardless of Go type.
func EqualTo(expected any) Matcher {
	return &equalTo{expected: expected}
}

type equalTo struct {
	expected any
}

func (m *equalTo) Matches(actual any) bool {
	return equals(actual, m.expected)
}

func (m *equalTo) Describe() string {
	return describeValue(m.expected)
}

// OneOf matches a value equal to any of candidates.
func OneOf(candidates ...any) Matcher {
	return &oneOf{candidates: candidates}
}

type oneOf struct {
	candidates []any
}

func (m *oneOf) Matches(actual any) bool {
	for _, c := range m.candidates {
		if equals(actual, c) {
			return true
		}
	}
	return false
}

func (m *oneOf) Describe() string {
	parts := make([]string, len(m.candidates))
	for i, c := range m.candidates {
		parts[i] = describeValue(c)
	}
	return "one of [" + strings.Join(parts, ", ") + "]"
}

type stringOp int

const (
	opContains stringOp = iota
	opStartsWith
	opEndsWith
)

// ContainsString matches strings containing substring.
func ContainsString(substring string) Matcher {
	return &stringMatcher{op: opContains, expected: substring}
}

// StartsWith matches strings beginning with prefix.
func StartsWith(prefix string) Matcher {
	return &stringMatcher{op: opStartsWith, expected: prefix}
}

// EndsWith matches strings ending with suffix.
func EndsWith(suffix string) Matcher {
	return &stringMatcher{op: opEndsWith, expected: suffix}
}

type stringMatcher struct {
	op       stringOp
	expected string
}

func (m *stringMatcher) Matches(actual any) bool {
	s, ok := actual.(string)
	if !ok {
		return false
	}
	switch m.op {
	case opStartsWith:
		return strings.HasPrefix(s, m.expected)
	case opEndsWith:
		return strings.HasSuffix(s, m.expected)
	default:
		return strings.Contains(s, m.expected)
	}
}

func (m *stringMatcher) Describe() string {
	switch m.op {
	case opStartsWith:
		return fmt.Sprintf("a string starting with %q", m.expected)
	case opEndsWith:
		return fmt.Sprintf("a string ending with %q", m.expected)
	default:
		return fmt.Sprintf("a string containing %q", m.expected)
	}
}

// MatchesPattern matches strings against a regular expression. Slashes
// around the pattern (/.../) are stripped. It panics if the pattern does not
// compile, like regexp.MustCompile.
func MatchesPattern(pattern string) Matcher {
	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	return &patternMatcher{re: regexp.MustCompile(pattern)}
}

type patternMatcher struct {
	re *regexp.Regexp
}

func (m *patternMatcher) Matches(actual any) bool {
	s, ok := actual.(string)
	return ok && m.re.MatchString(s)
}

func (m *patternMatcher) Describe() string {
	return fmt.Sprintf("a string matching /%s/", m.re.String())
}

// NullValue matches nil, which includes a JSON null and a missing path.
func NullValue() Matcher {
	return nullValue{}
}

type nullValue struct{}

func (nullValue) Matches(actual any) bool { return actual == nil }
func (nullValue) Describe() string        { return "null" }
func (nullValue) AllowsAbsent() bool      { return true }

// NotNullValue matches anything except nil.
func NotNullValue() Matcher {
	return Not(NullValue())
}

// Not inverts m. A missing path counts as "not" anything, so Not accepts it
// unless the inner matcher would also have accepted it.
func Not(m Matcher) Matcher {
	return &not{inner: m}
}

type not struct {
	inner Matcher
}

func (m *not) Matches(actual any) bool { return !m.inner.Matches(actual) }
func (m *not) Describe() string        { return "not " + m.inner.Describe() }
func (m *not) AllowsAbsent() bool      { return true }

// AllOf matches when every matcher matches.
func AllOf(ms ...Matcher) Matcher {
	return &allOf{matchers: ms}
}

type allOf struct {
	matchers []Matcher
}

func (m *allOf) Matches(actual any) bool {
	for _, inner := range m.matchers {
		if !inner.Matches(actual) {
			return false
		}
	}
	return true
}

func (m *allOf) Describe() string {
	return joinDescriptions(m.matchers, " and ")
}

func (m *allOf) AllowsAbsent() bool {
	for _, inner := range m.matchers {
		if !AllowsAbsent(inner) {
			return false
		}
	}
	return len(m.matchers) > 0
}

// AnyOf matches when at least one matcher matches.
func AnyOf(ms ...Matcher) Matcher {
	return &anyOf{matchers: ms}
}

type anyOf struct {
	matchers []Matcher
}

func (m *anyOf) Matches(actual any) bool {
	for _, inner := range m.matchers {
		if inner.Matches(actual) {
			return true
		}
	}
	return false
}

func (m *anyOf) Describe() string {
	return joinDescriptions(m.matchers, " or ")
}

func (m *anyOf) AllowsAbsent() bool {
	for _, inner := range m.matchers {
		if AllowsAbsent(inner) {
			return true
		}
	}
	return false
}

func joinDescriptions(ms []Matcher, sep string) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = "(" + m.Describe() + ")"
	}
	return strings.Join(parts, sep)
}

// HasItem matches arrays containing an element equal to expected, or one
// accepted by expected when it is itself a Matcher.
func HasItem(expected any) Matcher {
	if m, ok := expected.(Matcher); ok {
		return &hasItem{item: m}
	}
	return &hasItem{item: EqualTo(expected)}
}

type hasItem struct {
	item Matcher
}

func (m *hasItem) Matches(actual any) bool {
	rv := reflect.ValueOf(actual)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if m.item.Matches(rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

func (m *hasItem) Describe() string {
	return "a collection containing " + m.item.Describe()
}

// HasLength matches strings, arrays and objects of length n.
func HasLength(n int) Matcher {
	return &hasLength{expected: n}
}

type hasLength struct {
	expected int
}

func (m *hasLength) Matches(actual any) bool {
	return computeLength(actual) == m.expected
}

func (m *hasLength) Describe() string {
	return fmt.Sprintf("a value with length %d", m.expected)
}

// GreaterThan matches numbers strictly greater than n.
func GreaterThan(n any) Matcher { return &comparison{op: ">", expected: n} }

// GreaterThanOrEqualTo matches numbers greater than or equal to n.
func GreaterThanOrEqualTo(n any) Matcher { return &comparison{op: ">=", expected: n} }

// LessThan matches numbers strictly less than n.
func LessThan(n any) Matcher { return &comparison{op: "<", expected: n} }

// LessThanOrEqualTo matches numbers less than or equal to n.
func LessThanOrEqualTo(n any) Matcher { return &comparison{op: "<=", expected: n} }

type comparison struct {
	op       string
	expected any
}

func (m *comparison) Matches(actual any) bool {
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(m.expected)
	if !aOk || !eOk {
		return false
	}

	switch m.op {
	case ">":
		return actualNum > expectedNum
	case ">=":
		return actualNum >= expectedNum
	case "<":
		return actualNum < expectedNum
	case "<=":
		return actualNum <= expectedNum
	}
	return false
}

func (m *comparison) Describe() string {
	return fmt.Sprintf("a number %s %v", m.op, m.expected)
}

// IsType matches JSON values of the named type: string, number, boolean,
// array, object or null.
func IsType(name string) Matcher {
	return &isType{expected: name}
}

type isType struct {
	expected string
}

func (m *isType) Matches(actual any) bool {
	return jsonTypeName(actual) == m.expected
}

func (m *isType) Describe() string {
	return "a value of type " + m.expected
}

func (m *isType) AllowsAbsent() bool {
	return m.expected == "null"
}

func equals(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	_, actualIsString := actual.(string)
	_, expectedIsString := expected.(string)
	if actualIsString && expectedIsString {
		return false
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk {
		return actualNum == expectedNum
	}

	// Loose scalar comparison, e.g. a header "42" against 42
	if isScalar(actual) && isScalar(expected) && actual != nil && expected != nil {
		return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	}
	if v == nil {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return false
	}
	return true
}

// computeLength returns the length of a value, or -1 if length cannot be computed
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case nil:
		return -1
	default:
		rv := reflect.ValueOf(actual)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return rv.Len()
		default:
			return -1
		}
	}
}

func jsonTypeName(actual any) string {
	switch actual.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return reflect.TypeOf(actual).String()
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
