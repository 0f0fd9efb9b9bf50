package http

import "fmt"

// TransportError reports an exchange that did not produce a response, such
// as a refused connection or an unusable proxy setting. Err is the cause.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
