package http

import "strings"

// ContentType is either a symbolic token such as JSON or a literal MIME
// string such as "application/vnd.api+json".
type ContentType string

const (
	ANY    ContentType = "ANY"
	TEXT   ContentType = "TEXT"
	JSON   ContentType = "JSON"
	XML    ContentType = "XML"
	HTML   ContentType = "HTML"
	URLENC ContentType = "URLENC"
	BINARY ContentType = "BINARY"
)

var contentTypeAliases = map[ContentType][]string{
	ANY:    {"*/*"},
	TEXT:   {"text/plain"},
	JSON:   {"application/json", "application/javascript", "text/javascript"},
	XML:    {"application/xml", "text/xml", "application/xhtml+xml"},
	HTML:   {"text/html"},
	URLENC: {"application/x-www-form-urlencoded"},
	BINARY: {"application/octet-stream"},
}

// IsToken reports whether ct is one of the symbolic tokens.
func (ct ContentType) IsToken() bool {
	_, ok := contentTypeAliases[ContentType(strings.ToUpper(string(ct)))]
	return ok
}

// MIME returns the header value to send for ct.
func (ct ContentType) MIME() string {
	if aliases, ok := contentTypeAliases[ContentType(strings.ToUpper(string(ct)))]; ok {
		return aliases[0]
	}
	return string(ct)
}

// Accept returns the Accept header value for ct. Tokens expand to every alias.
func (ct ContentType) Accept() string {
	if aliases, ok := contentTypeAliases[ContentType(strings.ToUpper(string(ct)))]; ok {
		return strings.Join(aliases, ", ")
	}
	return string(ct)
}

// Matches compares actual, a Content-Type header value, against ct on the
// primary type only. Parameters such as charset are ignored.
func (ct ContentType) Matches(actual string) bool {
	got := PrimaryType(actual)
	if got == "" {
		return false
	}

	token := ContentType(strings.ToUpper(string(ct)))
	aliases, ok := contentTypeAliases[token]
	if !ok {
		return got == PrimaryType(string(ct))
	}
	if token == ANY {
		return true
	}
	for _, alias := range aliases {
		if got == alias {
			return true
		}
	}

	// Structured syntax suffixes, e.g. application/problem+json
	switch token {
	case JSON:
		return strings.HasSuffix(got, "+json")
	case XML:
		return strings.HasSuffix(got, "+xml")
	}
	return false
}

// PrimaryType strips parameters from a Content-Type value and lowercases it.
func PrimaryType(value string) string {
	primary, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(primary))
}
