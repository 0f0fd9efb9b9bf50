package config

// Registry holds the mutable defaults that new specifications copy.
// Specifications take a Snapshot when they are created, so changing a
// default later never affects a specification that already exists.
//
// A Registry is not safe for concurrent use. Tests that run in parallel
// should each build their own Config and pass it explicitly instead of
// mutating the shared Defaults.
type Registry struct {
	current *Config
	factory *Config
}

// Defaults is the process-wide registry used by the package-level chain
// functions. Call Reset when a test changes it.
var Defaults = NewRegistry(nil)

// NewRegistry returns a registry whose factory values are base, or
// DefaultConfig when base is nil.
func NewRegistry(base *Config) *Registry {
	if base == nil {
		base = DefaultConfig()
	}
	return &Registry{
		current: base.Clone(),
		factory: base.Clone(),
	}
}

// Snapshot returns a copy of the current defaults.
func (r *Registry) Snapshot() *Config {
	return r.current.Clone()
}

// SetRequestContentType sets the content type sent when a request does
// not choose one. Symbolic tokens such as "JSON" are accepted.
func (r *Registry) SetRequestContentType(value string) {
	r.current.RequestContentType = value
}

// SetResponseContentType sets the content type used to interpret response
// bodies that do not declare an expectation.
func (r *Registry) SetResponseContentType(value string) {
	r.current.ResponseContentType = value
}

func (r *Registry) SetBaseURI(uri string) {
	r.current.BaseURI = uri
}

func (r *Registry) SetPort(port int) {
	r.current.Port = port
}

func (r *Registry) SetBasePath(path string) {
	r.current.BasePath = path
}

// Apply merges cfg into the current defaults.
func (r *Registry) Apply(cfg *Config) {
	r.current = r.current.Merge(cfg)
}

// Reset restores every field to the factory values.
func (r *Registry) Reset() {
	r.current = r.factory.Clone()
}
