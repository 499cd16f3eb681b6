package ldap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "ldap://localhost:389", config.URL)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, uint32(1000), config.PageSize)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.InitialBackoff)
	assert.Equal(t, 30*time.Second, config.MaxBackoff)
	assert.Equal(t, 2.0, config.BackoffFactor)
	assert.False(t, config.SkipTLSVerify)
	require.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(
			"LDAP_URL=ldaps://dc1.example.com:636\n"+
				"LDAP_BASE_DN=dc=example,dc=com\n"+
				"LDAP_BIND_DN=cn=svc,dc=example,dc=com\n"+
				"LDAP_BIND_PASSWORD=secret\n"+
				"LDAP_TIMEOUT=5s\n"+
				"LDAP_PAGE_SIZE=200\n"), 0o600))

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "ldaps://dc1.example.com:636", config.URL)
		assert.Equal(t, "dc=example,dc=com", config.BaseDN)
		assert.Equal(t, "cn=svc,dc=example,dc=com", config.BindDN)
		assert.Equal(t, "secret", config.BindPassword)
		assert.Equal(t, 5*time.Second, config.Timeout)
		assert.Equal(t, uint32(200), config.PageSize)
		assert.Equal(t, 3, config.MaxRetries)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("LDAP_URL=ldap://from-file\nLDAP_MAX_RETRIES=1\n"), 0o600))

		t.Setenv(EnvURL, "ldap://from-env")
		t.Setenv(EnvSkipTLSVerify, "true")

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "ldap://from-env", config.URL)
		assert.Equal(t, 1, config.MaxRetries)
		assert.True(t, config.SkipTLSVerify)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read environment files")
	})

	tests := []struct {
		key   string
		value string
	}{
		{EnvTimeout, "soon"},
		{EnvPageSize, "-1"},
		{EnvMaxRetries, "many"},
		{EnvSkipTLSVerify, "maybe"},
	}
	for _, tt := range tests {
		t.Run("invalid "+tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ConnectionConfig)
		wantErr string
	}{
		{"missing URL", func(c *ConnectionConfig) { c.URL = "" }, "LDAP URL is required"},
		{"bind DN without password", func(c *ConnectionConfig) { c.BindDN = "cn=svc" }, "bind password is required"},
		{"zero timeout", func(c *ConnectionConfig) { c.Timeout = 0 }, "timeout must be positive"},
		{"zero page size", func(c *ConnectionConfig) { c.PageSize = 0 }, "page size must be positive"},
		{"negative retries", func(c *ConnectionConfig) { c.MaxRetries = -1 }, "max retries cannot be negative"},
		{"shrinking backoff", func(c *ConnectionConfig) { c.BackoffFactor = 0.5 }, "backoff factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
