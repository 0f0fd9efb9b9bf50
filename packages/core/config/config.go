package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults every request and response specification starts from
type Config struct {
	BaseURI             string            `json:"baseURI,omitempty" yaml:"baseURI,omitempty"`
	Port                int               `json:"port,omitempty" yaml:"port,omitempty"`
	BasePath            string            `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	RequestContentType  string            `json:"requestContentType,omitempty" yaml:"requestContentType,omitempty"`
	ResponseContentType string            `json:"responseContentType,omitempty" yaml:"responseContentType,omitempty"`
	Timeout             int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects     *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects        int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL         *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy               string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers             map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	LogOnFailure        *bool             `json:"logOnFailure,omitempty" yaml:"logOnFailure,omitempty"`
	NoColor             *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// BoolPtr is exported version of boolPtr for external use
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetLogOnFailure returns the log on failure setting, defaulting to false
func (c *Config) GetLogOnFailure() bool {
	return getBool(c.LogOnFailure, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitchain.json",
	"hitchain.json",
	".hitchain.yaml",
	".hitchain.yml",
	"hitchain.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. YAML is
// used for .yaml and .yml files, JSON otherwise.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	result := *c

	if c.FollowRedirects != nil {
		result.FollowRedirects = boolPtr(*c.FollowRedirects)
	}
	if c.ValidateSSL != nil {
		result.ValidateSSL = boolPtr(*c.ValidateSSL)
	}
	if c.LogOnFailure != nil {
		result.LogOnFailure = boolPtr(*c.LogOnFailure)
	}
	if c.NoColor != nil {
		result.NoColor = boolPtr(*c.NoColor)
	}
	if c.Headers != nil {
		result.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	result := c.Clone()
	if other == nil {
		return result
	}

	if other.BaseURI != "" {
		result.BaseURI = other.BaseURI
	}
	if other.Port > 0 {
		result.Port = other.Port
	}
	if other.BasePath != "" {
		result.BasePath = other.BasePath
	}
	if other.RequestContentType != "" {
		result.RequestContentType = other.RequestContentType
	}
	if other.ResponseContentType != "" {
		result.ResponseContentType = other.ResponseContentType
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = boolPtr(*other.FollowRedirects)
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = boolPtr(*other.ValidateSSL)
	}
	if other.LogOnFailure != nil {
		result.LogOnFailure = boolPtr(*other.LogOnFailure)
	}
	if other.NoColor != nil {
		result.NoColor = boolPtr(*other.NoColor)
	}

	// Merge headers
	if len(other.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
