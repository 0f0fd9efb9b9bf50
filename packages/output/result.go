package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

// Result is one executed request and the outcome of its expectations
type Result struct {
	Name     string
	Request  *hithttp.Request
	Response *hithttp.Response
	Failure  *Failure
	Err      error
	Duration time.Duration
}

// Failure describes the first expectation that did not hold
type Failure struct {
	Description string
	Path        string
	Expected    string
	Actual      any
	Message     string
}

// Passed reports whether the request was sent and every expectation held
func (r *Result) Passed() bool {
	return r.Err == nil && r.Failure == nil
}

// Formatter renders results
type Formatter interface {
	FormatResult(result *Result)
}

// Flushable is implemented by formatters that accumulate results
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Format names accepted by NewFormatter
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// NewFormatter returns the formatter registered for format
func NewFormatter(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use %s or %s)", format, FormatConsole, FormatJSON)
	}
}
