package ldap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

// Environment keys read by LoadConfig.
const (
	EnvURL           = "LDAP_URL"
	EnvBindDN        = "LDAP_BIND_DN"
	EnvBindPassword  = "LDAP_BIND_PASSWORD"
	EnvBaseDN        = "LDAP_BASE_DN"
	EnvTimeout       = "LDAP_TIMEOUT"
	EnvPageSize      = "LDAP_PAGE_SIZE"
	EnvMaxRetries    = "LDAP_MAX_RETRIES"
	EnvSkipTLSVerify = "LDAP_SKIP_TLS_VERIFY"
)

// ConnectionConfig holds configuration for LDAP connections.
type ConnectionConfig struct {
	// Connection settings
	URL     string        `default:"ldap://localhost:389"` // ldap:// or ldaps:// URL
	BaseDN  string        // Base DN for queries without one
	Timeout time.Duration `default:"30s"` // Dial and request timeout

	// Authentication settings
	BindDN       string // Simple bind DN; empty binds anonymously
	BindPassword string

	// TLS settings
	SkipTLSVerify bool // Skip certificate verification (not recommended)

	// Search settings
	PageSize uint32 `default:"1000"` // Page size for paged queries that set none

	// Retry settings
	MaxRetries     int           `default:"3"`     // Maximum retry attempts
	InitialBackoff time.Duration `default:"500ms"` // Initial backoff duration
	MaxBackoff     time.Duration `default:"30s"`   // Maximum backoff duration
	BackoffFactor  float64       `default:"2"`     // Backoff multiplication factor
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *ConnectionConfig {
	config := &ConnectionConfig{}
	defaults.MustSet(config)
	return config
}

// LoadConfig builds a configuration from defaults, the given .env files and
// the process environment, later sources winning.
func LoadConfig(paths ...string) (*ConnectionConfig, error) {
	config := DefaultConfig()

	env := map[string]string{}
	if len(paths) > 0 {
		var err error
		if env, err = godotenv.Read(paths...); err != nil {
			return nil, fmt.Errorf("failed to read environment files: %w", err)
		}
	}
	for _, key := range []string{EnvURL, EnvBindDN, EnvBindPassword, EnvBaseDN, EnvTimeout, EnvPageSize, EnvMaxRetries, EnvSkipTLSVerify} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}

	if err := config.apply(env); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ConnectionConfig) apply(env map[string]string) error {
	if v, ok := env[EnvURL]; ok {
		c.URL = v
	}
	if v, ok := env[EnvBindDN]; ok {
		c.BindDN = v
	}
	if v, ok := env[EnvBindPassword]; ok {
		c.BindPassword = v
	}
	if v, ok := env[EnvBaseDN]; ok {
		c.BaseDN = v
	}
	if v, ok := env[EnvTimeout]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := env[EnvPageSize]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPageSize, err)
		}
		c.PageSize = uint32(n)
	}
	if v, ok := env[EnvMaxRetries]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxRetries, err)
		}
		c.MaxRetries = n
	}
	if v, ok := env[EnvSkipTLSVerify]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSkipTLSVerify, err)
		}
		c.SkipTLSVerify = b
	}
	return nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *ConnectionConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("LDAP URL is required")
	}
	if c.BindDN != "" && c.BindPassword == "" {
		return fmt.Errorf("bind password is required when a bind DN is set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PageSize == 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("backoff factor must be at least 1")
	}
	return nil
}
