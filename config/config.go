package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"ouvidoria/contact"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type FormConfig struct {
	PhonePolicy string `toml:"phone_policy"` // "optional" or "complete"
	Messages    string `toml:"messages"`     // Optional message override file, e.g. locales/active.en.toml
}

type SubmitConfig struct {
	Mode       string        `toml:"mode"`  // "mock" or "webhook"
	Delay      time.Duration `toml:"delay"` // Mock response time
	WebhookURL string        `toml:"webhook_url"`
	Timeout    time.Duration `toml:"timeout"`
}

type SessionConfig struct {
	Expiration   time.Duration `toml:"expiration"`
	CookieSecure bool          `toml:"cookie_secure"`
}

type RateLimitConfig struct {
	Requests       int           `toml:"requests"`
	Window         time.Duration `toml:"window"`
	SubmitRequests int           `toml:"submit_requests"` // Tighter budget for POST /contact/submit
}

type SSLConfig struct {
	Enabled    bool   `toml:"enabled"`
	CertFile   string `toml:"cert_file"`    // Path to fullchain.pem
	KeyFile    string `toml:"key_file"`     // Path to privkey.pem
	Port       int    `toml:"port"`         // HTTPS port (default 443)
	Domain     string `toml:"domain"`       // Domain name for HSTS
	HSTSMaxAge int    `toml:"hsts_max_age"` // Max age for HSTS in seconds
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Form      FormConfig      `toml:"form"`
	Submit    SubmitConfig    `toml:"submit"`
	Session   SessionConfig   `toml:"session"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	SSL       SSLConfig       `toml:"ssl"`
}

const (
	SubmitModeMock    = "mock"
	SubmitModeWebhook = "webhook"
)

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	var config Config

	config.Server.Port = 3000
	config.Server.LogLevel = "info"

	config.Form.PhonePolicy = string(contact.PhoneOptional)

	config.Submit.Mode = SubmitModeMock
	config.Submit.Delay = 1500 * time.Millisecond
	config.Submit.Timeout = 10 * time.Second

	config.Session.Expiration = 24 * time.Hour

	config.RateLimit.Requests = 100
	config.RateLimit.Window = time.Minute
	config.RateLimit.SubmitRequests = 5

	config.SSL.Port = 443
	config.SSL.HSTSMaxAge = 31536000 // 1 year

	return config
}

// LoadConfig reads a TOML file over the defaults. A missing file yields the
// defaults.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &config, nil
		}
		return nil, fmt.Errorf("failed to decode %s: %w", filepath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := contact.ParsePhonePolicy(c.Form.PhonePolicy); err != nil {
		return fmt.Errorf("form.phone_policy: %w", err)
	}

	switch c.Submit.Mode {
	case SubmitModeMock:
		if c.Submit.Delay < 0 {
			return fmt.Errorf("submit.delay must not be negative")
		}
	case SubmitModeWebhook:
		if c.Submit.WebhookURL == "" {
			return fmt.Errorf("submit.webhook_url is required in webhook mode")
		}
	default:
		return fmt.Errorf("submit.mode must be %q or %q, got %q", SubmitModeMock, SubmitModeWebhook, c.Submit.Mode)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.requests and rate_limit.window must be positive")
	}

	if c.SSL.Enabled {
		if err := c.ValidateSSL(); err != nil {
			return fmt.Errorf("SSL configuration error: %w", err)
		}
	}

	return nil
}

// ValidateSSL checks if the SSL configuration is valid
func (c *Config) ValidateSSL() error {
	if !c.SSL.Enabled {
		return nil
	}

	if c.SSL.CertFile == "" {
		return fmt.Errorf("SSL certificate file path is required")
	}

	if c.SSL.KeyFile == "" {
		return fmt.Errorf("SSL key file path is required")
	}

	// Try loading the certificates to verify they're valid
	if _, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile); err != nil {
		return fmt.Errorf("failed to load SSL certificates: %w", err)
	}

	return nil
}

// GetSecurityHeaders returns the extra headers to send when TLS is enabled
func (c *Config) GetSecurityHeaders() map[string]string {
	headers := make(map[string]string)

	if c.SSL.Enabled && c.SSL.Domain != "" {
		headers["Strict-Transport-Security"] = fmt.Sprintf("max-age=%d; includeSubDomains", c.SSL.HSTSMaxAge)
	}

	return headers
}

// ListenAddr returns the address the server binds to
func (c *Config) ListenAddr() string {
	if c.SSL.Enabled {
		return fmt.Sprintf(":%d", c.SSL.Port)
	}
	return fmt.Sprintf(":%d", c.Server.Port)
}
