package chain

import (
	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

// defaultClient snapshots config.Defaults for one chain.
func defaultClient() *Client {
	return New(config.Defaults.Snapshot())
}

// Given starts a chain with the current process-wide defaults
func Given() *RequestSpec {
	return defaultClient().Given()
}

// With is an alias of Given
func With() *RequestSpec {
	return defaultClient().With()
}

// Expect starts a chain from the response side
func Expect() *ResponseSpec {
	return defaultClient().Expect()
}

// GivenSpecs starts a chain bound to pre-built specifications
func GivenSpecs(req *RequestSpec, resp *ResponseSpec) *RequestSpec {
	return defaultClient().GivenSpecs(req, resp)
}

func Get(path string) (*Response, error)     { return Given().Get(path) }
func Post(path string) (*Response, error)    { return Given().Post(path) }
func Put(path string) (*Response, error)     { return Given().Put(path) }
func Patch(path string) (*Response, error)   { return Given().Patch(path) }
func Delete(path string) (*Response, error)  { return Given().Delete(path) }
func Head(path string) (*Response, error)    { return Given().Head(path) }
func Options(path string) (*Response, error) { return Given().Options(path) }

// RequestContentType sets the process-wide default request content type.
// Call Reset when done; the change leaks into every later chain otherwise.
func RequestContentType(ct hithttp.ContentType) {
	config.Defaults.SetRequestContentType(string(ct))
}

// ResponseContentType sets the process-wide default response content type
func ResponseContentType(ct hithttp.ContentType) {
	config.Defaults.SetResponseContentType(string(ct))
}

// BaseURI sets the process-wide default base URI
func BaseURI(uri string) {
	config.Defaults.SetBaseURI(uri)
}

// Port sets the process-wide default port
func Port(port int) {
	config.Defaults.SetPort(port)
}

// BasePath sets the process-wide default base path
func BasePath(path string) {
	config.Defaults.SetBasePath(path)
}

// Configure merges cfg, typically one returned by config.LoadConfig, over
// the process-wide defaults. Zero-valued fields in cfg leave the current
// default in place.
func Configure(cfg *config.Config) {
	if cfg == nil {
		return
	}
	config.Defaults.Apply(cfg)
}

// Reset restores the process-wide defaults to their factory values.
// It is not safe to call while other goroutines run chains.
func Reset() {
	config.Defaults.Reset()
}
