package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv
const EnvPrefix = "HITCHAIN_"

// LoadFromEnv builds a partial configuration from HITCHAIN_* environment
// variables. Each file in envFiles that exists is loaded first; variables
// already present in the process environment are not overwritten.
//
// Only the fields whose variable is set are populated, so the result is
// meant to be merged over another configuration.
func LoadFromEnv(envFiles ...string) (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	cfg := &Config{
		BaseURI:             getEnv("BASE_URI"),
		BasePath:            getEnv("BASE_PATH"),
		RequestContentType:  getEnv("REQUEST_CONTENT_TYPE"),
		ResponseContentType: getEnv("RESPONSE_CONTENT_TYPE"),
		Proxy:               getEnv("PROXY"),
	}

	var err error
	if cfg.Port, err = getInt("PORT"); err != nil {
		return nil, err
	}
	if cfg.MaxRedirects, err = getInt("MAX_REDIRECTS"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = getTimeout("TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.FollowRedirects, err = getBoolPtr("FOLLOW_REDIRECTS"); err != nil {
		return nil, err
	}
	if cfg.ValidateSSL, err = getBoolPtr("VALIDATE_SSL"); err != nil {
		return nil, err
	}
	if cfg.LogOnFailure, err = getBoolPtr("LOG_ON_FAILURE"); err != nil {
		return nil, err
	}
	if cfg.NoColor, err = getBoolPtr("NO_COLOR"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func getInt(key string) (int, error) {
	value := getEnv(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, value, err)
	}
	return n, nil
}

// getTimeout accepts either a duration ("5s") or a plain number of milliseconds.
func getTimeout(key string) (int, error) {
	value := getEnv(key)
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, value, err)
	}
	return int(d / time.Millisecond), nil
}

func getBoolPtr(key string) (*bool, error) {
	value := getEnv(key)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, value, err)
	}
	return &b, nil
}
