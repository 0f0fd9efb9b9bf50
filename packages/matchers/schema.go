package matchers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MatchesJSONSchema validates the actual value against schema, a JSON Schema
// document. A string actual holding JSON text, such as a whole response
// body, is validated as that document.
func MatchesJSONSchema(schema string) Matcher {
	return &schemaMatcher{
		loader: gojsonschema.NewStringLoader(schema),
		source: "inline schema",
	}
}

// MatchesJSONSchemaFile is MatchesJSONSchema with the schema read from path.
// The file is read when the matcher is created.
func MatchesJSONSchemaFile(path string) (Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return &schemaMatcher{
		loader: gojsonschema.NewBytesLoader(data),
		source: path,
	}, nil
}

type schemaMatcher struct {
	loader gojsonschema.JSONLoader
	source string
	errors []string
}

func (m *schemaMatcher) Matches(actual any) bool {
	m.errors = nil

	var document gojsonschema.JSONLoader
	if s, ok := actual.(string); ok && json.Valid([]byte(s)) {
		document = gojsonschema.NewStringLoader(s)
	} else {
		document = gojsonschema.NewGoLoader(actual)
	}

	result, err := gojsonschema.Validate(m.loader, document)
	if err != nil {
		m.errors = []string{err.Error()}
		return false
	}

	for _, desc := range result.Errors() {
		m.errors = append(m.errors, desc.String())
	}
	return result.Valid()
}

func (m *schemaMatcher) Describe() string {
	if len(m.errors) > 0 {
		return fmt.Sprintf("a document valid against %s (%s)", m.source, strings.Join(m.errors, "; "))
	}
	return "a document valid against " + m.source
}
