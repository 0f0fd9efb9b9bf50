package chain

import (
	"errors"
	"fmt"
	"strings"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/jsonpath"
	"github.com/abdul-hamid-achik/hitchain/packages/matchers"
)

// check is one expectation: a value taken from the response and the
// matcher it must satisfy.
type check struct {
	description string
	path        string
	matcher     matchers.Matcher
	extract     func(resp *Response) (any, error)
}

func (c *check) evaluate(resp *Response) error {
	actual, err := c.extract(resp)
	if err != nil {
		if errors.Is(err, jsonpath.ErrPathNotFound) && matchers.AllowsAbsent(c.matcher) && c.matcher.Matches(nil) {
			return nil
		}
		return &AssertionError{
			Description: c.description,
			Path:        c.path,
			Expected:    c.matcher.Describe(),
			Err:         err,
		}
	}

	if c.matcher.Matches(actual) {
		return nil
	}
	return &AssertionError{
		Description: c.description,
		Path:        c.path,
		Expected:    c.matcher.Describe(),
		Actual:      actual,
	}
}

func requireMatcher(what string, m matchers.Matcher) error {
	if m == nil {
		return invalidArgument("%s: matcher must not be nil", what)
	}
	return nil
}

func statusCodeCheck(code int) *check {
	return &check{
		description: "status code",
		matcher:     matchers.EqualTo(code),
		extract: func(resp *Response) (any, error) {
			return resp.StatusCode(), nil
		},
	}
}

func statusLineCheck(m matchers.Matcher) *check {
	return &check{
		description: "status line",
		matcher:     m,
		extract: func(resp *Response) (any, error) {
			return resp.StatusLine(), nil
		},
	}
}

// contentTypeMatcher compares primary MIME types; tokens match every alias.
type contentTypeMatcher struct {
	expected hithttp.ContentType
}

func (m *contentTypeMatcher) Matches(actual any) bool {
	s, ok := actual.(string)
	return ok && m.expected.Matches(s)
}

func (m *contentTypeMatcher) Describe() string {
	if m.expected.IsToken() {
		return fmt.Sprintf("%s (%s)", strings.ToUpper(string(m.expected)), m.expected.Accept())
	}
	return fmt.Sprintf("%q", hithttp.PrimaryType(string(m.expected)))
}

func contentTypeCheck(ct hithttp.ContentType) *check {
	return &check{
		description: "content type",
		matcher:     &contentTypeMatcher{expected: ct},
		extract: func(resp *Response) (any, error) {
			return resp.ContentType(), nil
		},
	}
}

func bodyCheck(m matchers.Matcher) *check {
	return &check{
		description: "body",
		matcher:     m,
		extract: func(resp *Response) (any, error) {
			return resp.AsString(), nil
		},
	}
}

func bodyPathCheck(path string, m matchers.Matcher) *check {
	return &check{
		description: "body",
		path:        path,
		matcher:     m,
		extract: func(resp *Response) (any, error) {
			return resp.Path(path)
		},
	}
}

// headerCheck passes nil to the matcher when the header is absent.
func headerCheck(name string, m matchers.Matcher) *check {
	return &check{
		description: fmt.Sprintf("header %q", name),
		matcher:     m,
		extract: func(resp *Response) (any, error) {
			for k, v := range resp.raw.Headers {
				if strings.EqualFold(k, name) {
					return v, nil
				}
			}
			return nil, nil
		},
	}
}

func cookieCheck(name string, m matchers.Matcher) *check {
	return &check{
		description: fmt.Sprintf("cookie %q", name),
		matcher:     m,
		extract: func(resp *Response) (any, error) {
			if v, ok := resp.Cookie(name); ok {
				return v, nil
			}
			return nil, nil
		},
	}
}
