// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the server and CLI tools.
type Config struct {
	// HTTP server
	ListenAddr string

	// Storage paths
	BoltPath   string
	SQLitePath string

	// Google OAuth client used for write operations
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// API key used for read-only Data API calls
	APIKey string

	// Passphrase protecting tokens at rest. Optional here: the server
	// requires it at startup, the auth tool prompts when unset.
	KeystorePassphrase string

	LogLevel string

	// Expiry safety margin: a token expiring within TokenSkew is treated
	// as already expired.
	TokenSkew time.Duration

	// Bounded timeouts for refresh and remote calls
	RefreshTimeout time.Duration
	CallTimeout    time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	c := &Config{
		ListenAddr:         getenv("VIDWARDEN_LISTEN_ADDR", ":8080"),
		BoltPath:           getenv("VIDWARDEN_BOLT_PATH", "vidwarden.db"),
		SQLitePath:         getenv("VIDWARDEN_SQLITE_PATH", "vidwarden-audit.db"),
		ClientID:           os.Getenv("VIDWARDEN_CLIENT_ID"),
		ClientSecret:       os.Getenv("VIDWARDEN_CLIENT_SECRET"),
		RedirectURI:        getenv("VIDWARDEN_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		APIKey:             os.Getenv("VIDWARDEN_API_KEY"),
		KeystorePassphrase: os.Getenv("VIDWARDEN_KEYSTORE_PASSPHRASE"),
		LogLevel:           getenv("VIDWARDEN_LOG_LEVEL", "info"),
	}

	var err error
	if c.TokenSkew, err = getduration("VIDWARDEN_TOKEN_SKEW", 60*time.Second); err != nil {
		return nil, err
	}
	if c.RefreshTimeout, err = getduration("VIDWARDEN_REFRESH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if c.CallTimeout, err = getduration("VIDWARDEN_CALL_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.ClientID == "" {
		return errors.New("VIDWARDEN_CLIENT_ID must be set")
	}
	if c.ClientSecret == "" {
		return errors.New("VIDWARDEN_CLIENT_SECRET must be set")
	}
	if c.TokenSkew <= 0 {
		return errors.New("VIDWARDEN_TOKEN_SKEW must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Accept either a plain number of seconds or a Go duration string.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
