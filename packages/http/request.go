package http

import (
	"encoding/base64"
	"net/url"
	"strings"
	"time"
)

// Param is a single name/value pair. Slices of Param keep call order, which
// url.Values does not.
type Param struct {
	Name  string
	Value string
}

// AuthScheme selects how credentials are presented to the server.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBasic
	AuthBearer
	AuthDigest
)

// Auth holds request credentials
type Auth struct {
	Scheme   AuthScheme
	Username string
	Password string
	Token    string
}

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Cookies     []Param
	QueryParams []Param
	FormParams  []Param
	Body        []byte
	Timeout     time.Duration
	Auth        *Auth
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			delete(r.Headers, k)
		}
	}
	r.Headers[key] = value
	return r
}

// Header returns the value of a header regardless of key case.
func (r *Request) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Request) AddQueryParam(key, value string) *Request {
	r.QueryParams = append(r.QueryParams, Param{Name: key, Value: value})
	return r
}

func (r *Request) AddFormParam(key, value string) *Request {
	r.FormParams = append(r.FormParams, Param{Name: key, Value: value})
	return r
}

func (r *Request) AddCookie(name, value string) *Request {
	r.Cookies = append(r.Cookies, Param{Name: name, Value: value})
	return r
}

// BuildURL appends the query parameters to any query already present in URL.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	encoded := EncodeParams(r.QueryParams)
	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery = u.RawQuery + "&" + encoded
	}
	return u.String()
}

// ApplyAuth sets the headers for schemes that do not need a challenge.
func (r *Request) ApplyAuth() {
	if r.Auth == nil {
		return
	}

	switch r.Auth.Scheme {
	case AuthBasic:
		creds := r.Auth.Username + ":" + r.Auth.Password
		encoded := base64.StdEncoding.EncodeToString([]byte(creds))
		r.SetHeader("Authorization", "Basic "+encoded)
	case AuthBearer:
		r.SetHeader("Authorization", "Bearer "+r.Auth.Token)
	case AuthDigest:
		// Digest auth requires challenge-response, handled by the client
	}
}

// EncodeParams URL-encodes params in the order given.
func EncodeParams(params []Param) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
