package chain

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitchain/packages/output"
)

var (
	// ErrInvalidArgument reports a malformed builder call, such as an odd
	// number of name/value arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrChainConsumed is returned when a second verb is called on a chain.
	ErrChainConsumed = errors.New("chain already executed")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// AssertionError reports the first expectation that did not hold.
type AssertionError struct {
	Description string
	Path        string
	Expected    string
	Actual      any
	Err         error
}

func (e *AssertionError) Error() string {
	subject := e.Description
	if e.Path != "" {
		subject = fmt.Sprintf("%s at %q", subject, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: expected %s but %v", subject, e.Expected, e.Err)
	}
	return fmt.Sprintf("%s: expected %s but was %s", subject, e.Expected, formatActual(e.Actual))
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// Failure converts the error for the output formatters.
func (e *AssertionError) Failure() *output.Failure {
	f := &output.Failure{
		Description: e.Description,
		Path:        e.Path,
		Expected:    e.Expected,
		Actual:      e.Actual,
	}
	if e.Err != nil {
		f.Message = e.Err.Error()
	}
	return f
}

const maxActualLen = 200

func formatActual(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if len(val) > maxActualLen {
			return fmt.Sprintf("%q...", val[:maxActualLen])
		}
		return fmt.Sprintf("%q", val)
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > maxActualLen {
		return s[:maxActualLen] + "..."
	}
	return s
}
