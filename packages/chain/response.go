package chain

import (
	"time"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/jsonpath"
	"github.com/abdul-hamid-achik/hitchain/packages/matchers"
)

// Response is the result of a chain. The body is read in full; the JSON
// document is parsed on first use and cached.
type Response struct {
	raw    *hithttp.Response
	doc    *jsonpath.Document
	docErr error
	parsed bool
}

func newResponse(raw *hithttp.Response) *Response {
	return &Response{raw: raw}
}

func (r *Response) StatusCode() int {
	return r.raw.StatusCode
}

// StatusLine returns the status code and reason, e.g. "200 OK"
func (r *Response) StatusLine() string {
	return r.raw.Status
}

func (r *Response) ContentType() string {
	return r.raw.ContentType()
}

// Header returns a response header regardless of key case
func (r *Response) Header(name string) string {
	return r.raw.Header(name)
}

func (r *Response) Headers() map[string]string {
	headers := make(map[string]string, len(r.raw.Headers))
	for k, v := range r.raw.Headers {
		headers[k] = v
	}
	return headers
}

func (r *Response) Cookie(name string) (string, bool) {
	return r.raw.Cookie(name)
}

func (r *Response) Cookies() map[string]string {
	cookies := make(map[string]string, len(r.raw.Cookies))
	for k, v := range r.raw.Cookies {
		cookies[k] = v
	}
	return cookies
}

// Body returns the raw body bytes
func (r *Response) Body() []byte {
	return r.raw.Body
}

func (r *Response) AsString() string {
	return r.raw.BodyString()
}

func (r *Response) Duration() time.Duration {
	return r.raw.Duration
}

// Raw returns the transport response
func (r *Response) Raw() *hithttp.Response {
	return r.raw
}

// JSONPath parses the body as JSON. A malformed body returns *jsonpath.ParseError.
func (r *Response) JSONPath() (*jsonpath.Document, error) {
	if !r.parsed {
		r.doc, r.docErr = jsonpath.Parse(r.raw.Body)
		r.parsed = true
	}
	return r.doc, r.docErr
}

// Path returns the JSON value at path.
func (r *Response) Path(path string) (any, error) {
	doc, err := r.JSONPath()
	if err != nil {
		return nil, err
	}
	return doc.Get(path)
}

// Then validates the response after the call. Checks run immediately; the
// first failure is kept and later checks are skipped.
func (r *Response) Then() *Validation {
	return &Validation{resp: r}
}

// Validation checks a response that was already received.
type Validation struct {
	resp *Response
	err  error
}

func (v *Validation) run(what string, m matchers.Matcher, c func() *check) *Validation {
	if v.err != nil {
		return v
	}
	if err := requireMatcher(what, m); err != nil {
		v.err = err
		return v
	}
	v.err = c().evaluate(v.resp)
	return v
}

func (v *Validation) StatusCode(code int) *Validation {
	if v.err == nil {
		v.err = statusCodeCheck(code).evaluate(v.resp)
	}
	return v
}

func (v *Validation) StatusLine(m matchers.Matcher) *Validation {
	return v.run("status line", m, func() *check { return statusLineCheck(m) })
}

func (v *Validation) ContentType(ct hithttp.ContentType) *Validation {
	if v.err == nil {
		v.err = contentTypeCheck(ct).evaluate(v.resp)
	}
	return v
}

func (v *Validation) Body(m matchers.Matcher) *Validation {
	return v.run("body", m, func() *check { return bodyCheck(m) })
}

func (v *Validation) BodyAt(path string, m matchers.Matcher) *Validation {
	return v.run("body", m, func() *check { return bodyPathCheck(path, m) })
}

func (v *Validation) Header(name string, m matchers.Matcher) *Validation {
	return v.run("header", m, func() *check { return headerCheck(name, m) })
}

func (v *Validation) Cookie(name string, m matchers.Matcher) *Validation {
	return v.run("cookie", m, func() *check { return cookieCheck(name, m) })
}

func (v *Validation) And() *Validation { return v }

// Err returns the first failed check, or nil
func (v *Validation) Err() error {
	return v.err
}
