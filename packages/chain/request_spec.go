package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyString
	bodyBytes
	bodyJSON
)

// RequestSpec accumulates everything sent by one chain. Its configuration
// is copied when the chain starts; the request itself is built from a
// snapshot when a verb is called, so later changes to the request spec never reach
// a request that was already sent.
//
// The first malformed call is recorded and returned by Err and by the verb.
// Nothing is sent once an error is recorded.
type RequestSpec struct {
	client   *Client
	cfg      *config.Config
	base     *RequestSpec
	response *ResponseSpec

	params      []hithttp.Param
	queryParams []hithttp.Param
	formParams  []hithttp.Param
	pathParams  []hithttp.Param
	headers     []hithttp.Param
	cookies     []hithttp.Param

	body        []byte
	bodyKind    bodyKind
	contentType hithttp.ContentType
	auth        *hithttp.Auth

	baseURI  string
	port     int
	basePath string
	ctx      context.Context
	log      bool

	err      error
	consumed bool
}

func newRequestSpec(c *Client) *RequestSpec {
	return &RequestSpec{client: c, cfg: c.cfg.Clone()}
}

// Err returns the first builder error recorded on the chain, if any.
func (r *RequestSpec) Err() error {
	if r.base != nil {
		if err := r.base.Err(); err != nil {
			return err
		}
	}
	return r.err
}

func (r *RequestSpec) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// pairs turns name, value, name, value, ... into params. A slice value
// produces one param per element.
func pairs(kind string, nameValues []any) ([]hithttp.Param, error) {
	if len(nameValues)%2 != 0 {
		return nil, invalidArgument("%s: expected name/value pairs, got %d arguments", kind, len(nameValues))
	}

	result := make([]hithttp.Param, 0, len(nameValues)/2)
	for i := 0; i < len(nameValues); i += 2 {
		name, ok := nameValues[i].(string)
		if !ok || name == "" {
			return nil, invalidArgument("%s: name at position %d must be a non-empty string, got %T", kind, i, nameValues[i])
		}
		for _, v := range expandValue(nameValues[i+1]) {
			result = append(result, hithttp.Param{Name: name, Value: v})
		}
	}
	return result, nil
}

func expandValue(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = fmt.Sprint(item)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// upsert replaces the value of an existing name or appends a new param.
func upsert(list []hithttp.Param, p hithttp.Param, fold bool) []hithttp.Param {
	for i := range list {
		if list[i].Name == p.Name || (fold && strings.EqualFold(list[i].Name, p.Name)) {
			list[i] = p
			return list
		}
	}
	return append(list, p)
}

// Params adds name/value pairs. They are sent as query parameters for GET,
// HEAD, DELETE and OPTIONS and as form parameters otherwise.
func (r *RequestSpec) Params(nameValues ...any) *RequestSpec {
	params, err := pairs("params", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	r.params = append(r.params, params...)
	return r
}

// Param adds a single parameter
func (r *RequestSpec) Param(name string, value any) *RequestSpec {
	return r.Params(name, value)
}

func (r *RequestSpec) QueryParams(nameValues ...any) *RequestSpec {
	params, err := pairs("query params", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	r.queryParams = append(r.queryParams, params...)
	return r
}

func (r *RequestSpec) QueryParam(name string, value any) *RequestSpec {
	return r.QueryParams(name, value)
}

// FormParams adds URL-encoded form parameters. They cannot be combined with a body.
func (r *RequestSpec) FormParams(nameValues ...any) *RequestSpec {
	params, err := pairs("form params", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	if r.bodyKind != bodyNone {
		r.fail(invalidArgument("form params cannot be combined with a body"))
		return r
	}
	r.formParams = append(r.formParams, params...)
	return r
}

func (r *RequestSpec) FormParam(name string, value any) *RequestSpec {
	return r.FormParams(name, value)
}

// PathParams sets values for {name} placeholders in the path passed to the verb.
func (r *RequestSpec) PathParams(nameValues ...any) *RequestSpec {
	params, err := pairs("path params", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	for _, p := range params {
		r.pathParams = upsert(r.pathParams, p, false)
	}
	return r
}

func (r *RequestSpec) PathParam(name string, value any) *RequestSpec {
	return r.PathParams(name, value)
}

// Headers sets request headers. Names are case-insensitive; setting a
// header again replaces its value.
func (r *RequestSpec) Headers(nameValues ...any) *RequestSpec {
	params, err := pairs("headers", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	for _, p := range params {
		r.headers = upsert(r.headers, p, true)
	}
	return r
}

func (r *RequestSpec) Header(name string, value any) *RequestSpec {
	return r.Headers(name, value)
}

// Cookies sets request cookies. Setting a cookie again replaces its value.
func (r *RequestSpec) Cookies(nameValues ...any) *RequestSpec {
	params, err := pairs("cookies", nameValues)
	if err != nil {
		r.fail(err)
		return r
	}
	for _, p := range params {
		r.cookies = upsert(r.cookies, p, false)
	}
	return r
}

func (r *RequestSpec) Cookie(name string, value any) *RequestSpec {
	return r.Cookies(name, value)
}

// Body sets the request payload, replacing any previous one. A string is
// sent as is, a []byte is sent unmodified, nil clears the body and any
// other value is marshalled to JSON.
func (r *RequestSpec) Body(v any) *RequestSpec {
	switch val := v.(type) {
	case nil:
		r.body, r.bodyKind = nil, bodyNone
		return r
	case string:
		r.body, r.bodyKind = []byte(val), bodyString
	case []byte:
		r.body, r.bodyKind = append([]byte(nil), val...), bodyBytes
	default:
		data, err := json.Marshal(v)
		if err != nil {
			r.fail(invalidArgument("body: %v", err))
			return r
		}
		r.body, r.bodyKind = data, bodyJSON
	}

	if len(r.formParams) > 0 {
		r.fail(invalidArgument("body cannot be combined with form params"))
	}
	return r
}

// ContentType sets the request Content-Type. ct is a token such as JSON or
// a literal MIME type.
func (r *RequestSpec) ContentType(ct hithttp.ContentType) *RequestSpec {
	if strings.TrimSpace(string(ct)) == "" {
		r.fail(invalidArgument("content type must not be empty"))
		return r
	}
	r.contentType = ct
	return r
}

func (r *RequestSpec) BasicAuth(username, password string) *RequestSpec {
	r.auth = &hithttp.Auth{Scheme: hithttp.AuthBasic, Username: username, Password: password}
	return r
}

// DigestAuth answers a Digest challenge with the given credentials.
// The first request is sent without credentials.
func (r *RequestSpec) DigestAuth(username, password string) *RequestSpec {
	r.auth = &hithttp.Auth{Scheme: hithttp.AuthDigest, Username: username, Password: password}
	return r
}

func (r *RequestSpec) BearerToken(token string) *RequestSpec {
	r.auth = &hithttp.Auth{Scheme: hithttp.AuthBearer, Token: token}
	return r
}

func (r *RequestSpec) BaseURI(uri string) *RequestSpec {
	r.baseURI = uri
	return r
}

func (r *RequestSpec) Port(port int) *RequestSpec {
	if port < 1 || port > 65535 {
		r.fail(invalidArgument("port %d out of range", port))
		return r
	}
	r.port = port
	return r
}

func (r *RequestSpec) BasePath(path string) *RequestSpec {
	r.basePath = path
	return r
}

// Context sets the context passed to the transport. Its deadline applies
// in addition to the configured timeout.
func (r *RequestSpec) Context(ctx context.Context) *RequestSpec {
	if ctx == nil {
		r.fail(invalidArgument("context must not be nil"))
		return r
	}
	r.ctx = ctx
	return r
}

// Log prints the request and the response once the verb completes.
func (r *RequestSpec) Log() *RequestSpec {
	r.log = true
	return r
}

// Spec uses other as the base of this chain. Values set on this chain win
// over values from other. Only the request side of other is used.
func (r *RequestSpec) Spec(other *RequestSpec) *RequestSpec {
	for s := other; s != nil; s = s.base {
		if s == r {
			r.fail(invalidArgument("request spec cannot be based on itself"))
			return r
		}
	}
	r.base = other
	return r
}

func (r *RequestSpec) And() *RequestSpec     { return r }
func (r *RequestSpec) With() *RequestSpec    { return r }
func (r *RequestSpec) Request() *RequestSpec { return r }
func (r *RequestSpec) Then() *RequestSpec    { return r }
func (r *RequestSpec) When() *RequestSpec    { return r }
func (r *RequestSpec) Given() *RequestSpec   { return r }

// Expect returns the response side of the chain.
func (r *RequestSpec) Expect() *ResponseSpec {
	if r.response == nil {
		r.response = newResponseSpec(r)
	}
	return r.response
}

func (r *RequestSpec) Get(path string) (*Response, error) {
	return r.execute(http.MethodGet, path)
}

func (r *RequestSpec) Post(path string) (*Response, error) {
	return r.execute(http.MethodPost, path)
}

func (r *RequestSpec) Put(path string) (*Response, error) {
	return r.execute(http.MethodPut, path)
}

func (r *RequestSpec) Patch(path string) (*Response, error) {
	return r.execute(http.MethodPatch, path)
}

func (r *RequestSpec) Delete(path string) (*Response, error) {
	return r.execute(http.MethodDelete, path)
}

func (r *RequestSpec) Head(path string) (*Response, error) {
	return r.execute(http.MethodHead, path)
}

func (r *RequestSpec) Options(path string) (*Response, error) {
	return r.execute(http.MethodOptions, path)
}

// merged flattens the chain of bound specs into one spec. Lists from the
// base come first; scalar values from r win.
func (r *RequestSpec) merged() *RequestSpec {
	if r.base == nil {
		return r
	}
	b := r.base.merged()

	m := &RequestSpec{
		client:   r.client,
		cfg:      r.cfg,
		response: r.response,
		err:      b.err,
		log:      b.log || r.log,
	}
	if m.err == nil {
		m.err = r.err
	}

	m.params = append(append([]hithttp.Param(nil), b.params...), r.params...)
	m.queryParams = append(append([]hithttp.Param(nil), b.queryParams...), r.queryParams...)
	m.formParams = append(append([]hithttp.Param(nil), b.formParams...), r.formParams...)
	for _, list := range [][]hithttp.Param{b.pathParams, r.pathParams} {
		for _, p := range list {
			m.pathParams = upsert(m.pathParams, p, false)
		}
	}
	for _, list := range [][]hithttp.Param{b.headers, r.headers} {
		for _, p := range list {
			m.headers = upsert(m.headers, p, true)
		}
	}
	for _, list := range [][]hithttp.Param{b.cookies, r.cookies} {
		for _, p := range list {
			m.cookies = upsert(m.cookies, p, false)
		}
	}

	m.body, m.bodyKind = b.body, b.bodyKind
	if r.bodyKind != bodyNone {
		m.body, m.bodyKind = r.body, r.bodyKind
	}
	m.contentType = firstNonEmpty(r.contentType, b.contentType)
	m.auth = b.auth
	if r.auth != nil {
		m.auth = r.auth
	}
	m.baseURI = firstNonEmpty(r.baseURI, b.baseURI)
	m.basePath = firstNonEmpty(r.basePath, b.basePath)
	m.port = b.port
	if r.port != 0 {
		m.port = r.port
	}
	m.ctx = b.ctx
	if r.ctx != nil {
		m.ctx = r.ctx
	}

	return m
}

func firstNonEmpty[T ~string](values ...T) T {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
