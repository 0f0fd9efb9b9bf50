package config

// Factory values restored by Registry.Reset
const (
	DefaultBaseURI      = "http://localhost"
	DefaultPort         = 8080
	DefaultTimeout      = 30000 // 30 seconds
	DefaultMaxRedirects = 10
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURI:             DefaultBaseURI,
		Port:                DefaultPort,
		BasePath:            "",
		RequestContentType:  "",
		ResponseContentType: "",
		Timeout:             DefaultTimeout,
		FollowRedirects:     boolPtr(true),
		MaxRedirects:        DefaultMaxRedirects,
		ValidateSSL:         boolPtr(true),
		Proxy:               "",
		Headers:             nil,
		LogOnFailure:        boolPtr(false),
		NoColor:             boolPtr(false),
	}
}
