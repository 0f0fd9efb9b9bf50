package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL+"/test"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Contains(t, resp.BodyString(), "hello")
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	req := NewRequest(http.MethodPost, server.URL)
	req.SetHeader("Content-Type", "application/json")
	req.Body = []byte(`{"name": "test"}`)
	resp, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Contains(t, resp.BodyString(), "123")
}

func TestClient_RawBodyUnmodified(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := []byte{23, 42, 127, 123, 0, 255}
	req := NewRequest(http.MethodPost, server.URL)
	req.Body = payload
	_, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, payload, received)
}

func TestClient_OrderedParamsAndCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "b=2&a=1", r.URL.RawQuery)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "lastName=Doe&firstName=John", string(body))

		var names []string
		for _, c := range r.Cookies() {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"username", "token"}, names)

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest(http.MethodPost, server.URL)
	req.AddQueryParam("b", "2").AddQueryParam("a", "1")
	req.AddFormParam("lastName", "Doe").AddFormParam("firstName", "John")
	req.AddCookie("username", "John").AddCookie("token", "1234")

	resp, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	value, ok := resp.Cookie("session")
	assert.True(t, ok)
	assert.Equal(t, "abc", value)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL))

	require.Error(t, err)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "GET", transportErr.Method)
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient().Do(context.Background(), NewRequest(http.MethodGet, url))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, url, transportErr.URL)
}

func TestClient_BasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "jane", user)
		assert.Equal(t, "secret", pass)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest(http.MethodGet, server.URL)
	req.Auth = &Auth{Scheme: AuthBasic, Username: "jane", Password: "secret"}
	resp, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_DigestAuth(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="test", qop="auth,auth-int", nonce="abc123", opaque="xyz"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		params := ParseWWWAuthenticate(auth)
		expected := &DigestAuth{
			Username: "jane",
			Password: "secret",
			Realm:    "test",
			Nonce:    "abc123",
			URI:      "/private?x=1",
			Qop:      "auth",
			Nc:       params["nc"],
			Cnonce:   params["cnonce"],
			Method:   "GET",
		}
		assert.Equal(t, "/private?x=1", params["uri"])
		assert.Equal(t, "xyz", params["opaque"])
		assert.Equal(t, expected.ComputeDigestResponse(), params["response"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest(http.MethodGet, server.URL+"/private")
	req.AddQueryParam("x", "1")
	req.Auth = &Auth{Scheme: AuthDigest, Username: "jane", Password: "secret"}
	resp, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2, attempts)
}

func TestClient_DigestAuthInt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="test", qop="auth-int", nonce="abc123"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		params := ParseWWWAuthenticate(auth)
		expected := &DigestAuth{
			Username: "jane",
			Password: "secret",
			Realm:    "test",
			Nonce:    "abc123",
			URI:      "/private",
			Qop:      "auth-int",
			Nc:       params["nc"],
			Cnonce:   params["cnonce"],
			Method:   "POST",
			Body:     body,
		}
		assert.Equal(t, "auth-int", params["qop"])
		assert.Equal(t, expected.ComputeDigestResponse(), params["response"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest(http.MethodPost, server.URL+"/private")
	req.Body = []byte("hello world")
	req.Auth = &Auth{Scheme: AuthDigest, Username: "jane", Password: "secret"}
	resp, err := NewClient().Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSelectQop(t *testing.T) {
	tests := []struct {
		offered  string
		expected string
	}{
		{"auth", "auth"},
		{"auth,auth-int", "auth"},
		{"auth-int, auth", "auth"},
		{"auth-int", "auth-int"},
		{"auth-conf", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SelectQop(tt.offered), "offered: %q", tt.offered)
	}
}

func TestDigestAuth_AuthIntHashesBody(t *testing.T) {
	d := &DigestAuth{Username: "u", Password: "p", Realm: "r", Nonce: "n", URI: "/", Nc: "00000001", Cnonce: "c", Method: "POST"}

	d.Qop = "auth"
	plain := d.ComputeDigestResponse()
	d.Qop = "auth-int"
	d.Body = []byte("one")
	first := d.ComputeDigestResponse()
	d.Body = []byte("two")
	second := d.ComputeDigestResponse()

	assert.NotEqual(t, plain, first)
	assert.NotEqual(t, first, second)
}

func TestParseWWWAuthenticate(t *testing.T) {
	params := ParseWWWAuthenticate(`Digest realm="api, v2", qop="auth,auth-int", nonce="n=1", algorithm=MD5`)

	assert.Equal(t, "api, v2", params["realm"])
	assert.Equal(t, "auth,auth-int", params["qop"])
	assert.Equal(t, "n=1", params["nonce"])
	assert.Equal(t, "MD5", params["algorithm"])
}

func TestClient_FollowRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`final`))
			return
		}
		redirectCount++
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(true))
	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL+"/redirect"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "final", resp.BodyString())
	assert.Equal(t, 1, redirectCount)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL+"/redirect"))

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestClient_MaxRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectCount++
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithMaxRedirects(3))
	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL+"/redirect"))

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.LessOrEqual(t, redirectCount, 4)
}

func TestClient_InvalidProxy(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(WithProxy("localhost:3128"))
	_, err := client.Do(context.Background(), NewRequest(http.MethodGet, server.URL))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "invalid proxy URL")
	assert.False(t, called, "request must not bypass the proxy")
}

func TestParseProxyURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://proxy.local:3128", false},
		{"https://proxy.local", false},
		{"socks5://127.0.0.1:1080", false},
		{"localhost:3128", true},
		{"proxy.local", true},
		{"ftp://proxy.local", true},
		{"http://", true},
		{"http://%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := ParseProxyURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, u.Host)
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid http URL",
			url:     "http://example.com/path",
			wantErr: false,
		},
		{
			name:    "valid https URL",
			url:     "https://example.com/path",
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			url:     "ftp://example.com",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing scheme",
			url:     "example.com/path",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing host",
			url:     "http:///path",
			wantErr: true,
			errMsg:  "URL must have a host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		statusCode  int
		success     bool
		redirect    bool
		clientError bool
		serverError bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{299, true, false, false, false},
		{301, false, true, false, false},
		{302, false, true, false, false},
		{400, false, false, true, false},
		{404, false, false, true, false},
		{500, false, false, false, true},
		{503, false, false, false, true},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.statusCode}
		assert.Equal(t, tt.success, resp.IsSuccess(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.redirect, resp.IsRedirect(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.clientError, resp.IsClientError(), "StatusCode: %d", tt.statusCode)
		assert.Equal(t, tt.serverError, resp.IsServerError(), "StatusCode: %d", tt.statusCode)
	}
}

func TestResponse_IsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		resp := &Response{Headers: map[string]string{"Content-Type": tt.contentType}}
		assert.Equal(t, tt.expected, resp.IsJSON(), "Content-Type: %s", tt.contentType)
	}
}
