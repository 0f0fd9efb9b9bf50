package chain

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/abdul-hamid-achik/hitchain/packages/chain/mock"
	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

func okResponse() *hithttp.Response {
	return &hithttp.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Cookies:    map[string]string{},
		Body:       []byte(`{"greeting":"Greetings John Doe"}`),
	}
}

// capture returns a client whose transport records the single request it receives.
func capture(t *testing.T, cfg *config.Config) (*Client, func() *hithttp.Request) {
	t.Helper()
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)

	var captured *hithttp.Request
	transport.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *hithttp.Request) (*hithttp.Response, error) {
			captured = req
			return okResponse(), nil
		})

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return New(cfg, WithTransport(transport)), func() *hithttp.Request { return captured }
}

// noCalls returns a client whose transport must never be used.
func noCalls(t *testing.T) *Client {
	t.Helper()
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)
	return New(config.DefaultConfig(), WithTransport(transport))
}

func TestParamsKeepCallOrder(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().
		Params("firstName", "John", "lastName", "Doe").
		Param("firstName", "Jane").
		Get("/greet")
	require.NoError(t, err)

	assert.Equal(t, []hithttp.Param{
		{Name: "firstName", Value: "John"},
		{Name: "lastName", Value: "Doe"},
		{Name: "firstName", Value: "Jane"},
	}, req().QueryParams)
	assert.Empty(t, req().FormParams)
	assert.Equal(t, "http://localhost:8080/greet?firstName=John&lastName=Doe&firstName=Jane", req().BuildURL())
}

func TestParamsBecomeFormParamsOnPost(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().Params("firstName", "John", "lastName", "Doe").Post("/greet")
	require.NoError(t, err)

	assert.Empty(t, req().QueryParams)
	assert.Equal(t, []hithttp.Param{
		{Name: "firstName", Value: "John"},
		{Name: "lastName", Value: "Doe"},
	}, req().FormParams)
	assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", req().Header("Content-Type"))
}

func TestSliceValuesExpand(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().QueryParams("id", []string{"1", "2"}, "n", 3).Get("/items")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/items?id=1&id=2&n=3", req().BuildURL())
}

func TestHeadersAndCookies(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().
		Headers("X-Trace", "a", "Accept", "text/plain").
		Header("x-trace", "b").
		Cookies("username", "John", "token", "1234").
		Cookie("username", "Jane").
		Get("/header")
	require.NoError(t, err)

	assert.Equal(t, "b", req().Header("X-Trace"))
	assert.Len(t, req().Headers, 2)
	assert.Equal(t, "text/plain", req().Header("Accept"))
	assert.Equal(t, []hithttp.Param{
		{Name: "username", Value: "Jane"},
		{Name: "token", Value: "1234"},
	}, req().Cookies)
}

func TestOddPairsFailBeforeTransport(t *testing.T) {
	tests := []struct {
		name  string
		build func(*RequestSpec) *RequestSpec
	}{
		{"params", func(r *RequestSpec) *RequestSpec { return r.Params("firstName", "John", "lastName") }},
		{"query params", func(r *RequestSpec) *RequestSpec { return r.QueryParams("a") }},
		{"form params", func(r *RequestSpec) *RequestSpec { return r.FormParams("a", "1", "b") }},
		{"path params", func(r *RequestSpec) *RequestSpec { return r.PathParams("id") }},
		{"headers", func(r *RequestSpec) *RequestSpec { return r.Headers("MyHeader") }},
		{"cookies", func(r *RequestSpec) *RequestSpec { return r.Cookies("username", "John", "token") }},
		{"non-string name", func(r *RequestSpec) *RequestSpec { return r.Params(1, "John") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.build(noCalls(t).Given())

			assert.ErrorIs(t, spec.Err(), ErrInvalidArgument)

			resp, err := spec.Post("/greet")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestFirstErrorIsKept(t *testing.T) {
	spec := noCalls(t).Given().Params("a").Port(0)
	assert.ErrorContains(t, spec.Err(), "params")
}

func TestBodyLastWriteWins(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().Body("first").Body("second").Post("/body")
	require.NoError(t, err)

	assert.Equal(t, []byte("second"), req().Body)
	assert.Equal(t, "text/plain; charset=utf-8", req().Header("Content-Type"))
}

func TestBodyKinds(t *testing.T) {
	t.Run("bytes are sent unmodified", func(t *testing.T) {
		c, req := capture(t, nil)
		payload := []byte{23, 42, 127, 123}

		spec := c.Given().Body(payload)
		payload[0] = 0
		_, err := spec.Post("/binaryBody")
		require.NoError(t, err)

		assert.Equal(t, []byte{23, 42, 127, 123}, req().Body)
		assert.Equal(t, "application/octet-stream", req().Header("Content-Type"))
	})

	t.Run("values are marshalled to JSON", func(t *testing.T) {
		c, req := capture(t, nil)

		_, err := c.Given().Body(map[string]string{"message": "hello world"}).Post("/jsonBody")
		require.NoError(t, err)

		assert.JSONEq(t, `{"message":"hello world"}`, string(req().Body))
		assert.Equal(t, "application/json", req().Header("Content-Type"))
	})

	t.Run("unmarshallable value", func(t *testing.T) {
		spec := noCalls(t).Given().Body(make(chan int))
		assert.ErrorIs(t, spec.Err(), ErrInvalidArgument)
	})

	t.Run("nil clears the body", func(t *testing.T) {
		c, req := capture(t, nil)

		_, err := c.Given().Body("x").Body(nil).Post("/body")
		require.NoError(t, err)
		assert.Nil(t, req().Body)
		assert.Empty(t, req().Header("Content-Type"))
	})
}

func TestBodyAndFormParamsConflict(t *testing.T) {
	t.Run("body after form params", func(t *testing.T) {
		spec := noCalls(t).Given().FormParams("a", "1").Body("x")
		assert.ErrorIs(t, spec.Err(), ErrInvalidArgument)
	})

	t.Run("form params after body", func(t *testing.T) {
		spec := noCalls(t).Given().Body("x").FormParam("a", "1")
		assert.ErrorIs(t, spec.Err(), ErrInvalidArgument)
	})

	t.Run("generic params with body on post fail at the verb", func(t *testing.T) {
		spec := noCalls(t).Given().Body("x").Params("a", "1")
		require.NoError(t, spec.Err())

		_, err := spec.Post("/body")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("generic params with body on delete become query params", func(t *testing.T) {
		c, req := capture(t, nil)

		_, err := c.Given().Body("x").Params("a", "1").Delete("/body")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/body?a=1", req().BuildURL())
		assert.Equal(t, []byte("x"), req().Body)
	})
}

func TestContentTypeResolution(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(*config.Config)
		build    func(*RequestSpec) *RequestSpec
		expected string
	}{
		{
			name:     "token",
			build:    func(r *RequestSpec) *RequestSpec { return r.Body("{}").ContentType(JSON) },
			expected: "application/json",
		},
		{
			name:     "literal MIME",
			build:    func(r *RequestSpec) *RequestSpec { return r.Body("{}").ContentType("application/vnd.api+json") },
			expected: "application/vnd.api+json",
		},
		{
			name:     "explicit wins over header",
			build:    func(r *RequestSpec) *RequestSpec { return r.Header("Content-Type", "text/xml").ContentType(JSON) },
			expected: "application/json",
		},
		{
			name:     "header wins over default",
			cfg:      func(c *config.Config) { c.RequestContentType = "JSON" },
			build:    func(r *RequestSpec) *RequestSpec { return r.Header("content-type", "text/xml").Body("<a/>") },
			expected: "text/xml",
		},
		{
			name:     "default token",
			cfg:      func(c *config.Config) { c.RequestContentType = "JSON" },
			build:    func(r *RequestSpec) *RequestSpec { return r.Body("{}") },
			expected: "application/json",
		},
		{
			name:     "default as MIME string",
			cfg:      func(c *config.Config) { c.RequestContentType = "application/json" },
			build:    func(r *RequestSpec) *RequestSpec { return r.Body("{}") },
			expected: "application/json",
		},
		{
			name:     "no body",
			build:    func(r *RequestSpec) *RequestSpec { return r },
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			c, req := capture(t, cfg)

			_, err := tt.build(c.Given()).Post("/jsonBody")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req().Header("Content-Type"))
		})
	}
}

func TestDefaultRequestContentTypeAndReset(t *testing.T) {
	registry := config.NewRegistry(nil)
	registry.SetRequestContentType("JSON")

	c, req := capture(t, registry.Snapshot())
	_, err := c.Given().Body(`{ "message" : "hello world"}`).Post("/jsonBody")
	require.NoError(t, err)
	assert.Equal(t, "application/json", req().Header("Content-Type"))

	registry.Reset()

	c, req = capture(t, registry.Snapshot())
	_, err = c.Given().Body(`{ "message" : "hello world"}`).Post("/jsonBody")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", req().Header("Content-Type"))
}

func TestConfigIsCopiedAtCreation(t *testing.T) {
	cfg := config.DefaultConfig()
	c, req := capture(t, cfg)

	spec := c.Given().Body("x")
	cfg.RequestContentType = "JSON"
	cfg.BaseURI = "http://elsewhere"

	_, err := spec.Post("/body")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", req().Header("Content-Type"))
	assert.Equal(t, "http://localhost:8080/body", req().URL)
}

func TestAcceptHeader(t *testing.T) {
	t.Run("from expected content type", func(t *testing.T) {
		c, req := capture(t, nil)

		_, err := c.Expect().ContentType(JSON).When().Post("/jsonBodyAcceptHeader")
		require.NoError(t, err)
		assert.Equal(t, "application/json, application/javascript, text/javascript", req().Header("Accept"))
	})

	t.Run("from default response content type", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ResponseContentType = "application/json"
		c, req := capture(t, cfg)

		_, err := c.Given().Post("/jsonBodyAcceptHeader")
		require.NoError(t, err)
		assert.Equal(t, "application/json", req().Header("Accept"))
	})

	t.Run("explicit header is kept", func(t *testing.T) {
		c, req := capture(t, nil)

		_, err := c.Given().Header("Accept", "*/*").Expect().ContentType(JSON).When().Get("/greet")
		require.NoError(t, err)
		assert.Equal(t, "*/*", req().Header("Accept"))
	})
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(*config.Config)
		build    func(*RequestSpec) *RequestSpec
		path     string
		expected string
	}{
		{name: "defaults", path: "/greet", expected: "http://localhost:8080/greet"},
		{name: "relative path", path: "greet", expected: "http://localhost:8080/greet"},
		{name: "absolute path", path: "https://api.test/v1/x", expected: "https://api.test/v1/x"},
		{
			name:     "base URI with port keeps it",
			cfg:      func(c *config.Config) { c.BaseURI = "http://127.0.0.1:4321" },
			path:     "/greet",
			expected: "http://127.0.0.1:4321/greet",
		},
		{
			name:     "base path",
			cfg:      func(c *config.Config) { c.BasePath = "/api/" },
			path:     "/greet",
			expected: "http://localhost:8080/api/greet",
		},
		{
			name:     "chain overrides",
			build:    func(r *RequestSpec) *RequestSpec { return r.BaseURI("https://example.test").Port(8443).BasePath("v2") },
			path:     "/greet?x=1",
			expected: "https://example.test:8443/v2/greet?x=1",
		},
		{
			name:     "path params are escaped",
			build:    func(r *RequestSpec) *RequestSpec { return r.PathParams("name", "John Doe", "id", 7) },
			path:     "/users/{id}/{name}",
			expected: "http://localhost:8080/users/7/John%20Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			spec := New(cfg).Given()
			if tt.build != nil {
				spec = tt.build(spec)
			}
			require.NoError(t, spec.Err())

			got, err := spec.resolveURL(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPathParamErrors(t *testing.T) {
	_, err := noCalls(t).Given().Get("/users/{id}")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorContains(t, err, "id")

	_, err = noCalls(t).Given().PathParam("unused", 1).Get("/users")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = noCalls(t).Given().BaseURI("not a url").Get("/users")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAuth(t *testing.T) {
	c, req := capture(t, nil)

	_, err := c.Given().BasicAuth("jetty", "jetty").Get("/secured/hello")
	require.NoError(t, err)
	require.NotNil(t, req().Auth)
	assert.Equal(t, hithttp.AuthBasic, req().Auth.Scheme)
	assert.Equal(t, "jetty", req().Auth.Username)

	c, req = capture(t, nil)
	_, err = c.Given().BearerToken("t0k3n").Get("/secured/hello")
	require.NoError(t, err)
	assert.Equal(t, hithttp.AuthBearer, req().Auth.Scheme)
	assert.Equal(t, "t0k3n", req().Auth.Token)
}

func TestDefaultHeadersAndTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{"X-Api-Key": "secret", "X-Trace": "default"}
	cfg.Timeout = 1500
	c, req := capture(t, cfg)

	_, err := c.Given().Header("X-Trace", "local").Get("/header")
	require.NoError(t, err)
	assert.Equal(t, "secret", req().Header("X-Api-Key"))
	assert.Equal(t, "local", req().Header("X-Trace"))
	assert.Equal(t, int64(1500), req().Timeout.Milliseconds())
}

func TestSpecMerging(t *testing.T) {
	c, req := capture(t, nil)

	base := c.Given().
		ContentType(URLENC).
		Params("firstName", "John").
		Headers("X-Base", "1", "X-Shared", "base").
		Cookie("session", "base")

	_, err := c.Given().
		Spec(base).
		Params("lastName", "Doe").
		Header("X-Shared", "local").
		Cookie("session", "local").
		Post("/greet")
	require.NoError(t, err)

	assert.Equal(t, []hithttp.Param{
		{Name: "firstName", Value: "John"},
		{Name: "lastName", Value: "Doe"},
	}, req().FormParams)
	assert.Equal(t, "1", req().Header("X-Base"))
	assert.Equal(t, "local", req().Header("X-Shared"))
	assert.Equal(t, []hithttp.Param{{Name: "session", Value: "local"}}, req().Cookies)
	assert.Equal(t, "application/x-www-form-urlencoded", req().Header("Content-Type"))
}

func TestSpecMergingCarriesBaseErrors(t *testing.T) {
	c := noCalls(t)
	base := c.Given().Params("odd")

	spec := c.Given().Spec(base)
	assert.ErrorIs(t, spec.Err(), ErrInvalidArgument)

	_, err := spec.Get("/greet")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSpecCycle(t *testing.T) {
	c := noCalls(t)
	a := c.Given()
	b := c.Given().Spec(a)
	a.Spec(b)
	assert.ErrorIs(t, a.Err(), ErrInvalidArgument)
}

func TestSecondVerbIsRejected(t *testing.T) {
	c, _ := capture(t, nil)

	spec := c.Given()
	_, err := spec.Get("/greet")
	require.NoError(t, err)

	_, err = spec.Get("/greet")
	assert.ErrorIs(t, err, ErrChainConsumed)
}

func TestContextIsPassedToTransport(t *testing.T) {
	type key struct{}
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	transport.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *hithttp.Request) (*hithttp.Response, error) {
			assert.Equal(t, "value", ctx.Value(key{}))
			return okResponse(), nil
		})

	ctx := context.WithValue(context.Background(), key{}, "value")
	_, err := New(nil, WithTransport(transport)).Given().Context(ctx).Get("/greet")
	require.NoError(t, err)
}

func TestTransportErrorIsReturnedUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	transportErr := &hithttp.TransportError{Method: "GET", URL: "http://localhost:8080/greet", Err: errors.New("connection refused")}
	transport.EXPECT().Do(gomock.Any(), gomock.Any()).Return(nil, transportErr).Times(1)

	resp, err := New(nil, WithTransport(transport)).Given().Expect().StatusCode(200).When().Get("/greet")
	assert.Nil(t, resp)
	assert.Same(t, transportErr, err)
}
