package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Submit.Mode != SubmitModeMock {
		t.Errorf("default submit mode = %q, want %q", cfg.Submit.Mode, SubmitModeMock)
	}
	if cfg.Submit.Delay != 1500*time.Millisecond {
		t.Errorf("default delay = %v, want 1.5s", cfg.Submit.Delay)
	}
	if cfg.Form.PhonePolicy != "optional" {
		t.Errorf("default phone policy = %q, want optional", cfg.Form.PhonePolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080
log_level = "debug"

[form]
phone_policy = "complete"

[submit]
mode = "webhook"
webhook_url = "https://crm.example.com/intake"
timeout = "3s"

[rate_limit]
requests = 10
window = "30s"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.LogLevel != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Form.PhonePolicy != "complete" {
		t.Errorf("phone policy = %q, want complete", cfg.Form.PhonePolicy)
	}
	if cfg.Submit.Mode != SubmitModeWebhook || cfg.Submit.Timeout != 3*time.Second {
		t.Errorf("submit = %+v", cfg.Submit)
	}
	if cfg.RateLimit.Window != 30*time.Second || cfg.RateLimit.Requests != 10 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	// untouched sections keep their defaults
	if cfg.Session.Expiration != 24*time.Hour {
		t.Errorf("session expiration = %v, want 24h", cfg.Session.Expiration)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig(missing) error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("LoadConfig(missing) = %+v, want defaults", *cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", "[server\nport = 1", "failed to decode"},
		{"unknown policy", "[form]\nphone_policy = \"strict\"", "phone_policy"},
		{"unknown mode", "[submit]\nmode = \"smtp\"", "submit.mode"},
		{"webhook without url", "[submit]\nmode = \"webhook\"", "webhook_url"},
		{"zero rate limit", "[rate_limit]\nrequests = 0", "rate_limit"},
		{"ssl without cert", "[ssl]\nenabled = true", "SSL certificate file path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestGetSecurityHeaders(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.GetSecurityHeaders()) != 0 {
		t.Error("no headers expected without TLS")
	}

	cfg.SSL.Enabled = true
	cfg.SSL.Domain = "ouvidoria.example.com"
	got := cfg.GetSecurityHeaders()["Strict-Transport-Security"]
	if got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS header = %q", got)
	}
	if cfg.ListenAddr() != ":443" {
		t.Errorf("ListenAddr() = %q, want :443", cfg.ListenAddr())
	}
}

func TestLoadConfig_PhonePolicyCaseInsensitive(t *testing.T) {
	for _, policy := range []string{"Complete", " OPTIONAL "} {
		cfg, err := LoadConfig(writeConfig(t, "[form]\nphone_policy = \""+policy+"\""))
		if err != nil {
			t.Errorf("LoadConfig(phone_policy=%q) error = %v", policy, err)
			continue
		}
		if cfg.Form.PhonePolicy != policy {
			t.Errorf("phone policy = %q, want %q kept for the parser", cfg.Form.PhonePolicy, policy)
		}
	}
}
