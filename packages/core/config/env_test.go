package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("reads prefixed variables", func(t *testing.T) {
		t.Setenv("HITCHAIN_BASE_URI", "http://env.test")
		t.Setenv("HITCHAIN_PORT", "8181")
		t.Setenv("HITCHAIN_TIMEOUT", "5s")
		t.Setenv("HITCHAIN_LOG_ON_FAILURE", "true")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://env.test", cfg.BaseURI)
		assert.Equal(t, 8181, cfg.Port)
		assert.Equal(t, 5000, cfg.Timeout)
		assert.True(t, cfg.GetLogOnFailure())
		assert.Nil(t, cfg.ValidateSSL)
	})

	t.Run("timeout in milliseconds", func(t *testing.T) {
		t.Setenv("HITCHAIN_TIMEOUT", "250")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 250, cfg.Timeout)
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("HITCHAIN_PORT", "eighty")

		_, err := LoadFromEnv()
		assert.ErrorContains(t, err, "HITCHAIN_PORT")
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("HITCHAIN_BASE_PATH=/from-file\n"), 0644))
		t.Setenv("HITCHAIN_BASE_PATH", "")
		os.Unsetenv("HITCHAIN_BASE_PATH")

		cfg, err := LoadFromEnv(path, filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "/from-file", cfg.BasePath)
	})

	t.Run("merged over defaults", func(t *testing.T) {
		t.Setenv("HITCHAIN_REQUEST_CONTENT_TYPE", "JSON")

		envCfg, err := LoadFromEnv()
		require.NoError(t, err)
		merged := DefaultConfig().Merge(envCfg)
		assert.Equal(t, "JSON", merged.RequestContentType)
		assert.Equal(t, 8080, merged.Port)
	})
}
