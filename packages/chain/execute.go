package chain

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/output"
)

// Content types chosen when neither the chain nor the defaults set one
const (
	formContentType   = "application/x-www-form-urlencoded; charset=utf-8"
	stringContentType = "text/plain; charset=utf-8"
)

var pathParamPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// usesForm reports whether generic params become form params for method.
func usesForm(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func (r *RequestSpec) execute(method, path string) (*Response, error) {
	if r.consumed {
		return nil, ErrChainConsumed
	}
	r.consumed = true

	spec := r.merged()
	if spec.err != nil {
		return nil, spec.err
	}
	if r.response != nil {
		if err := r.response.baseErr(); err != nil {
			return nil, err
		}
	}

	req, err := spec.build(method, path)
	if err != nil {
		return nil, err
	}

	ctx := spec.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := r.client.transport.Do(ctx, req)
	if err != nil {
		r.client.report(spec.log, req, nil, err)
		return nil, err
	}

	resp := newResponse(raw)
	if r.response != nil {
		err = r.response.verify(resp)
	}
	r.client.report(spec.log, req, resp, err)
	return resp, err
}

// build snapshots the request spec into a transport request.
func (r *RequestSpec) build(method, path string) (*hithttp.Request, error) {
	target, err := r.resolveURL(path)
	if err != nil {
		return nil, err
	}

	req := hithttp.NewRequest(method, target)
	req.Timeout = r.cfg.TimeoutDuration()

	defaults := make([]string, 0, len(r.cfg.Headers))
	for name := range r.cfg.Headers {
		defaults = append(defaults, name)
	}
	sort.Strings(defaults)
	for _, name := range defaults {
		req.SetHeader(name, r.cfg.Headers[name])
	}
	for _, h := range r.headers {
		req.SetHeader(h.Name, h.Value)
	}

	for _, c := range r.cookies {
		req.AddCookie(c.Name, c.Value)
	}
	for _, p := range r.queryParams {
		req.AddQueryParam(p.Name, p.Value)
	}
	for _, p := range r.formParams {
		req.AddFormParam(p.Name, p.Value)
	}

	if len(r.params) > 0 {
		add := req.AddQueryParam
		if usesForm(method) {
			if r.bodyKind != bodyNone {
				return nil, invalidArgument("params on %s are sent as form params and cannot be combined with a body; use QueryParams", method)
			}
			add = req.AddFormParam
		}
		for _, p := range r.params {
			add(p.Name, p.Value)
		}
	}
	if len(req.FormParams) > 0 && r.bodyKind != bodyNone {
		return nil, invalidArgument("body cannot be combined with form params")
	}
	if r.bodyKind != bodyNone {
		req.Body = append([]byte(nil), r.body...)
	}

	if r.contentType != "" {
		req.SetHeader("Content-Type", r.contentType.MIME())
	} else if req.Header("Content-Type") == "" {
		if ct := r.defaultContentType(len(req.FormParams) > 0); ct != "" {
			req.SetHeader("Content-Type", ct)
		}
	}

	if req.Header("Accept") == "" {
		if ct := r.acceptContentType(); ct != "" {
			req.SetHeader("Accept", ct.Accept())
		}
	}

	if r.auth != nil {
		auth := *r.auth
		req.Auth = &auth
	}

	return req, nil
}

// defaultContentType returns the configured default request content type,
// or one inferred from the payload.
func (r *RequestSpec) defaultContentType(hasForm bool) string {
	if r.cfg.RequestContentType != "" {
		return hithttp.ContentType(r.cfg.RequestContentType).MIME()
	}
	switch {
	case hasForm:
		return formContentType
	case r.bodyKind == bodyString:
		return stringContentType
	case r.bodyKind == bodyBytes:
		return hithttp.BINARY.MIME()
	case r.bodyKind == bodyJSON:
		return hithttp.JSON.MIME()
	}
	return ""
}

// acceptContentType is the expected response content type, falling back
// to the default response content type.
func (r *RequestSpec) acceptContentType() hithttp.ContentType {
	if r.response != nil {
		if ct := r.response.expectedContentType(); ct != "" {
			return ct
		}
	}
	return hithttp.ContentType(r.cfg.ResponseContentType)
}

// resolveURL substitutes path params and prefixes relative paths with the
// base URI, port and base path.
func (r *RequestSpec) resolveURL(path string) (string, error) {
	path, err := substitutePathParams(path, r.pathParams)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}

	baseURI := firstNonEmpty(r.baseURI, r.cfg.BaseURI)
	basePath := firstNonEmpty(r.basePath, r.cfg.BasePath)
	port := r.port
	if port == 0 {
		port = r.cfg.Port
	}

	u, err := url.Parse(baseURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", invalidArgument("base URI %q is not an absolute URL", baseURI)
	}
	if u.Port() == "" && port > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}

	prefix := strings.TrimRight(u.Scheme+"://"+u.Host+u.EscapedPath(), "/")
	return prefix + joinPath(basePath, path), nil
}

func joinPath(basePath, path string) string {
	var sb strings.Builder
	if bp := strings.Trim(basePath, "/"); bp != "" {
		sb.WriteString("/")
		sb.WriteString(bp)
	}
	if path != "" && !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "?") {
		sb.WriteByte('/')
	}
	sb.WriteString(path)
	return sb.String()
}

func substitutePathParams(path string, params []hithttp.Param) (string, error) {
	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Name] = p.Value
	}

	used := make(map[string]bool, len(params))
	var missing []string
	result := pathParamPattern.ReplaceAllStringFunc(path, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		value, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return placeholder
		}
		used[name] = true
		return url.PathEscape(value)
	})

	if len(missing) > 0 {
		return "", invalidArgument("path %q: no value for path params %s", path, strings.Join(missing, ", "))
	}
	for _, p := range params {
		if !used[p.Name] {
			return "", invalidArgument("path param %q is not used in %q", p.Name, path)
		}
	}
	return result, nil
}

type exchangePrinter interface {
	FormatRequest(req *hithttp.Request)
	FormatResponse(resp *hithttp.Response)
}

// report prints the exchange when the chain asked for it, or when it
// failed and LogOnFailure is set.
func (c *Client) report(logRequested bool, req *hithttp.Request, resp *Response, err error) {
	if !logRequested && (err == nil || !c.cfg.GetLogOnFailure()) {
		return
	}

	if err == nil {
		if p, ok := c.printer.(exchangePrinter); ok {
			p.FormatRequest(req)
			p.FormatResponse(resp.raw)
			return
		}
	}

	result := &output.Result{Request: req}
	if resp != nil {
		result.Response = resp.raw
		result.Duration = resp.raw.Duration
	}

	var assertErr *AssertionError
	if errors.As(err, &assertErr) {
		result.Failure = assertErr.Failure()
	} else {
		result.Err = err
	}
	c.printer.FormatResult(result)
}
