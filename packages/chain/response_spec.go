package chain

import (
	"strings"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/matchers"
)

// ResponseSpec holds the expectations of a chain. Checks run in the order
// they were added and stop at the first failure.
type ResponseSpec struct {
	request     *RequestSpec
	base        *ResponseSpec
	contentType hithttp.ContentType
	checks      []*check
}

func newResponseSpec(req *RequestSpec) *ResponseSpec {
	return &ResponseSpec{request: req}
}

func (s *ResponseSpec) add(what string, m matchers.Matcher, c func() *check) *ResponseSpec {
	if err := requireMatcher(what, m); err != nil {
		s.request.fail(err)
		return s
	}
	s.checks = append(s.checks, c())
	return s
}

// StatusCode expects an exact status code
func (s *ResponseSpec) StatusCode(code int) *ResponseSpec {
	s.checks = append(s.checks, statusCodeCheck(code))
	return s
}

// StatusLine matches the full status line, e.g. "200 OK"
func (s *ResponseSpec) StatusLine(m matchers.Matcher) *ResponseSpec {
	return s.add("status line", m, func() *check { return statusLineCheck(m) })
}

// ContentType expects the response Content-Type to match ct on its primary
// type. It also becomes the request Accept header when none is set.
func (s *ResponseSpec) ContentType(ct hithttp.ContentType) *ResponseSpec {
	if strings.TrimSpace(string(ct)) == "" {
		s.request.fail(invalidArgument("content type must not be empty"))
		return s
	}
	s.contentType = ct
	s.checks = append(s.checks, contentTypeCheck(ct))
	return s
}

// Body matches the whole body as a string
func (s *ResponseSpec) Body(m matchers.Matcher) *ResponseSpec {
	return s.add("body", m, func() *check { return bodyCheck(m) })
}

// BodyAt decodes the body as JSON and matches the value at path. A path
// that does not resolve fails unless the matcher accepts absent values.
func (s *ResponseSpec) BodyAt(path string, m matchers.Matcher) *ResponseSpec {
	return s.add("body", m, func() *check { return bodyPathCheck(path, m) })
}

func (s *ResponseSpec) Header(name string, m matchers.Matcher) *ResponseSpec {
	return s.add("header", m, func() *check { return headerCheck(name, m) })
}

func (s *ResponseSpec) Cookie(name string, m matchers.Matcher) *ResponseSpec {
	return s.add("cookie", m, func() *check { return cookieCheck(name, m) })
}

// Spec runs the checks of other before the checks of this chain.
func (s *ResponseSpec) Spec(other *ResponseSpec) *ResponseSpec {
	for o := other; o != nil; o = o.base {
		if o == s {
			s.request.fail(invalidArgument("response spec cannot be based on itself"))
			return s
		}
	}
	s.base = other
	return s
}

func (s *ResponseSpec) And() *ResponseSpec      { return s }
func (s *ResponseSpec) Response() *ResponseSpec { return s }
func (s *ResponseSpec) Expect() *ResponseSpec   { return s }
func (s *ResponseSpec) Then() *ResponseSpec     { return s }

// When returns the request side of the chain
func (s *ResponseSpec) When() *RequestSpec {
	return s.request
}

// Given returns the request side of the chain
func (s *ResponseSpec) Given() *RequestSpec {
	return s.request
}

func (s *ResponseSpec) Get(path string) (*Response, error)     { return s.request.Get(path) }
func (s *ResponseSpec) Post(path string) (*Response, error)    { return s.request.Post(path) }
func (s *ResponseSpec) Put(path string) (*Response, error)     { return s.request.Put(path) }
func (s *ResponseSpec) Patch(path string) (*Response, error)   { return s.request.Patch(path) }
func (s *ResponseSpec) Delete(path string) (*Response, error)  { return s.request.Delete(path) }
func (s *ResponseSpec) Head(path string) (*Response, error)    { return s.request.Head(path) }
func (s *ResponseSpec) Options(path string) (*Response, error) { return s.request.Options(path) }

func (s *ResponseSpec) expectedContentType() hithttp.ContentType {
	if s.contentType != "" {
		return s.contentType
	}
	if s.base != nil {
		return s.base.expectedContentType()
	}
	return ""
}

// baseErr returns a builder error recorded on the chain of a bound spec.
func (s *ResponseSpec) baseErr() error {
	for o := s.base; o != nil; o = o.base {
		if err := o.request.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResponseSpec) verify(resp *Response) error {
	if s.base != nil {
		if err := s.base.verify(resp); err != nil {
			return err
		}
	}
	for _, c := range s.checks {
		if err := c.evaluate(resp); err != nil {
			return err
		}
	}
	return nil
}
