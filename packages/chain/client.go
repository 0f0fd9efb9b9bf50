package chain

import (
	"os"

	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
	"github.com/abdul-hamid-achik/hitchain/packages/output"
)

// Content type tokens accepted by RequestSpec.ContentType,
// ResponseSpec.ContentType and the registry wrappers.
const (
	ANY    = hithttp.ANY
	TEXT   = hithttp.TEXT
	JSON   = hithttp.JSON
	XML    = hithttp.XML
	HTML   = hithttp.HTML
	URLENC = hithttp.URLENC
	BINARY = hithttp.BINARY
)

// Client creates chains that share one configuration and transport.
// A Client never reads config.Defaults after it is created.
type Client struct {
	cfg       *config.Config
	transport Transport
	printer   output.Formatter
}

// Option is a functional option for Client
type Option func(*Client)

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithPrinter sets the formatter used by RequestSpec.Log and LogOnFailure
func WithPrinter(p output.Formatter) Option {
	return func(c *Client) {
		c.printer = p
	}
}

// New creates a Client from a copy of cfg. A nil cfg uses the factory defaults.
func New(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = transportFor(cfg)
	}
	if c.printer == nil {
		c.printer = output.NewConsoleFormatter(
			output.WithWriter(os.Stderr),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
	return c
}

// Config returns a copy of the client's configuration
func (c *Client) Config() *config.Config {
	return c.cfg.Clone()
}

// Given starts a chain
func (c *Client) Given() *RequestSpec {
	return newRequestSpec(c)
}

// With starts a chain. It is an alias of Given.
func (c *Client) With() *RequestSpec {
	return newRequestSpec(c)
}

// Expect starts a chain from the response side
func (c *Client) Expect() *ResponseSpec {
	return newRequestSpec(c).Expect()
}

// GivenSpecs starts a chain bound to pre-built specifications. The request
// side of req and the checks of resp apply first; anything added to the
// returned chain is applied on top. Either argument may be nil.
func (c *Client) GivenSpecs(req *RequestSpec, resp *ResponseSpec) *RequestSpec {
	spec := newRequestSpec(c)
	if req != nil {
		spec.Spec(req)
	}
	if resp != nil {
		spec.Expect().Spec(resp)
	}
	return spec
}

func (c *Client) Get(path string) (*Response, error)     { return c.Given().Get(path) }
func (c *Client) Post(path string) (*Response, error)    { return c.Given().Post(path) }
func (c *Client) Put(path string) (*Response, error)     { return c.Given().Put(path) }
func (c *Client) Patch(path string) (*Response, error)   { return c.Given().Patch(path) }
func (c *Client) Delete(path string) (*Response, error)  { return c.Given().Delete(path) }
func (c *Client) Head(path string) (*Response, error)    { return c.Given().Head(path) }
func (c *Client) Options(path string) (*Response, error) { return c.Given().Options(path) }
