package types

import (
	"fmt"
	"net/url"
	"strings"
)

// supported URL schemes for the backing pub/sub server.
const (
	SchemeRedis  = "redis"
	SchemeRediss = "rediss"
)

// ConnectionProfile describes a named, reusable set of connection details for
// the backing pub/sub server. The `connect` tool can reference a profile by
// name instead of receiving inline credentials.
type ConnectionProfile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// URL of the backing server, e.g. redis://broker.internal:6379/0
	URL string `json:"url"`

	// Principal is the username presented to the backing server. Optional.
	Principal string `json:"principal,omitempty"`

	// Password is the inline secret. Prefer PasswordRef for anything that
	// ends up in a config file.
	Password    string      `json:"password,omitempty"`
	PasswordRef PasswordRef `json:"password_ref,omitempty"`

	// Properties are opaque session properties applied at connect time.
	Properties map[string]string `json:"properties,omitempty"`
}

// PasswordRef points at a secret stored outside the profile definition.
type PasswordRef struct {
	Env  string `json:"env,omitempty"`
	File string `json:"file,omitempty"`
}

// Validate checks that the profile is well-formed enough to be stored.
// It does not attempt to connect.
func (p *ConnectionProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if strings.Contains(p.Name, "/") || strings.Contains(p.Name, " ") {
		return fmt.Errorf("profile name '%s' must not contain spaces or slashes", p.Name)
	}
	return ValidateServerURL(p.URL)
}

// ValidateServerURL checks that the given string is a usable backing-server URL.
func ValidateServerURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("server url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server url '%s': %w", raw, err)
	}
	if u.Scheme != SchemeRedis && u.Scheme != SchemeRediss {
		return fmt.Errorf(
			"unsupported url scheme '%s', valid schemes are '%s' and '%s'",
			u.Scheme, SchemeRedis, SchemeRediss,
		)
	}
	if u.Host == "" {
		return fmt.Errorf("server url '%s' is missing a host", raw)
	}
	return nil
}

// Redacted returns a copy of the profile safe to return from the API:
// the password (if any) is blanked out.
func (p *ConnectionProfile) Redacted() *ConnectionProfile {
	c := *p
	c.Password = ""
	c.PasswordRef = PasswordRef{}
	return &c
}
