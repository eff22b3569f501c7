package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestConnectionProfileJSONMarshaling(t *testing.T) {
	t.Parallel()

	profile := ConnectionProfile{
		Name:        "prod-broker",
		Description: "Production broker",
		URL:         "redis://broker.internal:6379/0",
		Principal:   "agent",
		Properties:  map[string]string{"tier": "prod"},
	}

	data, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("Failed to marshal ConnectionProfile: %v", err)
	}

	expected := `{"name":"prod-broker","description":"Production broker",` +
		`"url":"redis://broker.internal:6379/0","principal":"agent",` +
		`"password_ref":{},"properties":{"tier":"prod"}}`
	if string(data) != expected {
		t.Errorf("Expected JSON %s, got %s", expected, string(data))
	}
}

func TestConnectionProfileValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		profile     ConnectionProfile
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid profile",
			profile: ConnectionProfile{Name: "local", URL: "redis://localhost:6379"},
			wantErr: false,
		},
		{
			name:    "valid tls profile",
			profile: ConnectionProfile{Name: "secure", URL: "rediss://broker:6380"},
			wantErr: false,
		},
		{
			name:        "missing name",
			profile:     ConnectionProfile{URL: "redis://localhost:6379"},
			wantErr:     true,
			errContains: "name is required",
		},
		{
			name:        "name with spaces",
			profile:     ConnectionProfile{Name: "my broker", URL: "redis://localhost:6379"},
			wantErr:     true,
			errContains: "must not contain",
		},
		{
			name:        "missing url",
			profile:     ConnectionProfile{Name: "local"},
			wantErr:     true,
			errContains: "url is required",
		},
		{
			name:        "unsupported scheme",
			profile:     ConnectionProfile{Name: "local", URL: "http://localhost:6379"},
			wantErr:     true,
			errContains: "unsupported url scheme",
		},
		{
			name:        "missing host",
			profile:     ConnectionProfile{Name: "local", URL: "redis://"},
			wantErr:     true,
			errContains: "missing a host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestConnectionProfileRedacted(t *testing.T) {
	t.Parallel()

	profile := ConnectionProfile{
		Name:        "prod-broker",
		URL:         "redis://broker:6379",
		Password:    "hunter2",
		PasswordRef: PasswordRef{Env: "BROKER_PASSWORD"},
	}

	redacted := profile.Redacted()
	if redacted.Password != "" {
		t.Errorf("Expected password to be blanked, got %q", redacted.Password)
	}
	if redacted.PasswordRef.Env != "" {
		t.Errorf("Expected password ref to be blanked, got %q", redacted.PasswordRef.Env)
	}
	// original must be untouched
	if profile.Password != "hunter2" {
		t.Errorf("Redacted must not mutate the original profile")
	}
}
