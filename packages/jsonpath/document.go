package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrPathNotFound is returned when a path does not resolve to a value.
	ErrPathNotFound = errors.New("path not found")
	// ErrWrongType is returned by the typed getters when the value exists
	// but has a different JSON type.
	ErrWrongType = errors.New("wrong value type")
)

// ParseError reports a body that is not valid JSON.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("body is not valid JSON (%v): %q", e.Err, e.Snippet)
	}
	return fmt.Sprintf("body is not valid JSON: %q", e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a parsed JSON body.
type Document struct {
	root gjson.Result
}

// Parse validates body and returns a Document for path lookups.
func Parse(body []byte) (*Document, error) {
	if !gjson.ValidBytes(body) {
		var raw json.RawMessage
		err := json.Unmarshal(body, &raw)
		return nil, &ParseError{Snippet: snippet(body), Err: err}
	}
	return &Document{root: gjson.ParseBytes(body)}, nil
}

// Get parses body and resolves path in one step.
func Get(body []byte, path string) (any, error) {
	doc, err := Parse(body)
	if err != nil {
		return nil, err
	}
	return doc.Get(path)
}

// Get returns the value at path as decoded JSON: string, float64, bool,
// nil, []any or map[string]any.
func (d *Document) Get(path string) (any, error) {
	result, err := d.lookup(path)
	if err != nil {
		return nil, err
	}
	return result.Value(), nil
}

// Exists reports whether path resolves, including to an explicit null.
func (d *Document) Exists(path string) bool {
	_, err := d.lookup(path)
	return err == nil
}

func (d *Document) GetString(path string) (string, error) {
	result, err := d.lookup(path)
	if err != nil {
		return "", err
	}
	if result.IsObject() || result.IsArray() {
		return "", fmt.Errorf("%w: %s is not a scalar", ErrWrongType, path)
	}
	return result.String(), nil
}

func (d *Document) GetInt(path string) (int, error) {
	result, err := d.lookup(path)
	if err != nil {
		return 0, err
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrWrongType, path)
	}
	return int(result.Int()), nil
}

func (d *Document) GetFloat(path string) (float64, error) {
	result, err := d.lookup(path)
	if err != nil {
		return 0, err
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrWrongType, path)
	}
	return result.Float(), nil
}

func (d *Document) GetBool(path string) (bool, error) {
	result, err := d.lookup(path)
	if err != nil {
		return false, err
	}
	if result.Type != gjson.True && result.Type != gjson.False {
		return false, fmt.Errorf("%w: %s is not a boolean", ErrWrongType, path)
	}
	return result.Bool(), nil
}

func (d *Document) GetList(path string) ([]any, error) {
	result, err := d.lookup(path)
	if err != nil {
		return nil, err
	}
	list, ok := result.Value().([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrWrongType, path)
	}
	return list, nil
}

func (d *Document) GetMap(path string) (map[string]any, error) {
	result, err := d.lookup(path)
	if err != nil {
		return nil, err
	}
	m, ok := result.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an object", ErrWrongType, path)
	}
	return m, nil
}

func (d *Document) lookup(path string) (gjson.Result, error) {
	converted := ConvertPath(path)
	if converted == "" {
		return d.root, nil
	}

	result := d.root.Get(converted)
	if !result.Exists() {
		return result, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return result, nil
}

// gjsonSpecial lists the characters gjson reads as path syntax inside a
// field name. They are escaped so a key only ever matches itself.
const gjsonSpecial = `\.*?|#@!=<>%()[]{},`

// ConvertPath converts bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1",
// "items[*].id" -> "items.#.id". A leading "$" is dropped only as the root
// ("$", "$.a", "$[0]"), so keys like "$ref" stay intact.
func ConvertPath(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "$":
		return ""
	case strings.HasPrefix(path, "$."), strings.HasPrefix(path, "$["):
		path = path[1:]
	}

	var parts []string
	var field strings.Builder
	flush := func() {
		if field.Len() > 0 {
			parts = append(parts, field.String())
			field.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '.':
			flush()
		case c == '[':
			if end := strings.IndexByte(path[i:], ']'); end > 0 {
				inner := path[i+1 : i+end]
				if inner == "*" || isIndex(inner) {
					flush()
					if inner == "*" {
						inner = "#"
					}
					parts = append(parts, inner)
					i += end
					continue
				}
			}
			field.WriteString(`\[`)
		case strings.IndexByte(gjsonSpecial, c) >= 0:
			field.WriteByte('\\')
			field.WriteByte(c)
		default:
			field.WriteByte(c)
		}
	}
	flush()

	result := strings.Join(parts, ".")
	// "items.#" alone would ask gjson for the array length
	if result == "#" {
		return ""
	}
	return strings.TrimSuffix(result, ".#")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func snippet(body []byte) string {
	const max = 64
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
