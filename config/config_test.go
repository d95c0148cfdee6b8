package config

import (
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
mail:
  from: me@example.com
  to: you@example.com
  smtp:
    password: app-secret
`

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Limit != 10 {
		t.Errorf("Limit = %d, want 10", cfg.Limit)
	}
	if cfg.RequestDelay.Duration() != 2*time.Second {
		t.Errorf("RequestDelay = %v, want 2s", cfg.RequestDelay.Duration())
	}
	if cfg.API.BaseURL != "https://ttp.cbp.dhs.gov/schedulerapi" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.ServiceName != "Global Entry" {
		t.Errorf("API.ServiceName = %q, want Global Entry", cfg.API.ServiceName)
	}
	if cfg.Mail.Transport != TransportSMTP {
		t.Errorf("Mail.Transport = %q, want smtp", cfg.Mail.Transport)
	}
	if cfg.Mail.Subject != "Global Entry - book Quick!" {
		t.Errorf("Mail.Subject = %q", cfg.Mail.Subject)
	}
	if cfg.Mail.SMTP.Host != "smtp.gmail.com" || cfg.Mail.SMTP.Port != 587 {
		t.Errorf("SMTP = %s:%d, want smtp.gmail.com:587", cfg.Mail.SMTP.Host, cfg.Mail.SMTP.Port)
	}
	if cfg.Mail.SMTP.Username != "me@example.com" {
		t.Errorf("SMTP.Username = %q, want the sender", cfg.Mail.SMTP.Username)
	}
	if cfg.Before.IsSet() {
		t.Error("Before should be unset")
	}
	if len(cfg.Locations) != 0 {
		t.Errorf("Locations = %v, want empty", cfg.Locations)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
locations: [5446, 5020]
before: 2024-06-01
limit: 25
silent: true
request_delay: 5s
api:
  base_url: http://localhost:9999/schedulerapi
  service_name: NEXUS
  timeout: 15s
mail:
  transport: sendgrid
  from: me@example.com
  to: you@example.com
  subject: Slots!
  sendgrid:
    api_key: SG.key
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
calendar:
  path: /tmp/slots.ics
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ids := cfg.LocationIDs()
	if len(ids) != 2 || ids[0] != 5446 || ids[1] != 5020 {
		t.Errorf("LocationIDs() = %v, want [5446 5020]", ids)
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.Before.Equal(want) {
		t.Errorf("Before = %v, want %v", cfg.Before.Time, want)
	}
	if cfg.Limit != 25 {
		t.Errorf("Limit = %d, want 25", cfg.Limit)
	}
	if !cfg.Silent {
		t.Error("Silent = false, want true")
	}
	if cfg.RequestDelay.Duration() != 5*time.Second {
		t.Errorf("RequestDelay = %v, want 5s", cfg.RequestDelay.Duration())
	}
	if cfg.API.ServiceName != "NEXUS" {
		t.Errorf("API.ServiceName = %q, want NEXUS", cfg.API.ServiceName)
	}
	if cfg.API.Timeout.Duration() != 15*time.Second {
		t.Errorf("API.Timeout = %v, want 15s", cfg.API.Timeout.Duration())
	}
	if cfg.Mail.Transport != TransportSendGrid {
		t.Errorf("Mail.Transport = %q, want sendgrid", cfg.Mail.Transport)
	}
	if cfg.Mail.Subject != "Slots!" {
		t.Errorf("Mail.Subject = %q, want Slots!", cfg.Mail.Subject)
	}
	if cfg.Slack.WebhookURL == "" {
		t.Error("Slack.WebhookURL is empty")
	}
	if cfg.Calendar.Path != "/tmp/slots.ics" {
		t.Errorf("Calendar.Path = %q", cfg.Calendar.Path)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_SEND_FROM", "me@example.com")
	t.Setenv("TEST_APP_PASS", "secret123")

	yaml := `
mail:
  from: ${TEST_SEND_FROM}
  to: ${TEST_SEND_TO:-me@example.com}
  smtp:
    password: ${TEST_APP_PASS}
slack:
  webhook_url: ${TEST_UNSET_WEBHOOK:-}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Mail.From != "me@example.com" {
		t.Errorf("Mail.From = %q, want me@example.com", cfg.Mail.From)
	}
	if cfg.Mail.To != "me@example.com" {
		t.Errorf("Mail.To = %q, want the default", cfg.Mail.To)
	}
	if cfg.Mail.SMTP.Password != "secret123" {
		t.Errorf("SMTP.Password = %q, want secret123", cfg.Mail.SMTP.Password)
	}
	if cfg.Slack.WebhookURL != "" {
		t.Errorf("Slack.WebhookURL = %q, want empty", cfg.Slack.WebhookURL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	// MISSING_APP_PASS is expected to not exist in the environment
	yaml := `
mail:
  from: me@example.com
  to: you@example.com
  smtp:
    password: ${MISSING_APP_PASS}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_APP_PASS") {
		t.Errorf("error should mention MISSING_APP_PASS: %v", err)
	}
	if !strings.Contains(err.Error(), "mail.smtp.password") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "no sender",
			yaml:        "mail:\n  to: you@example.com\n  smtp:\n    password: x\n",
			wantErrLike: "mail.from is required",
		},
		{
			name:        "no recipient",
			yaml:        "mail:\n  from: me@example.com\n  smtp:\n    password: x\n",
			wantErrLike: "mail.to is required",
		},
		{
			name:        "smtp without password",
			yaml:        "mail:\n  from: me@example.com\n  to: you@example.com\n",
			wantErrLike: "mail.smtp.password is required",
		},
		{
			name:        "sendgrid without key",
			yaml:        "mail:\n  transport: sendgrid\n  from: me@example.com\n  to: you@example.com\n",
			wantErrLike: "mail.sendgrid.api_key is required",
		},
		{
			name:        "unknown transport",
			yaml:        minimalYAML + "  transport: pigeon\n",
			wantErrLike: "mail.transport must be",
		},
		{
			name:        "bad smtp port",
			yaml:        minimalYAML + "    port: 70000\n",
			wantErrLike: "mail.smtp.port",
		},
		{
			name:        "negative location",
			yaml:        minimalYAML + "locations: [5446, -1]\n",
			wantErrLike: "locations[1]",
		},
		{
			name:        "negative limit",
			yaml:        minimalYAML + "limit: -5\n",
			wantErrLike: "limit must be positive",
		},
		{
			name:        "request delay too short",
			yaml:        minimalYAML + "request_delay: 500ms\n",
			wantErrLike: "request_delay must be at least 1s",
		},
		{
			name:        "negative timeout",
			yaml:        minimalYAML + "api:\n  timeout: -1s\n",
			wantErrLike: "api.timeout cannot be negative",
		},
		{
			name:        "api url without scheme",
			yaml:        minimalYAML + "api:\n  base_url: ttp.cbp.dhs.gov\n",
			wantErrLike: "api.base_url",
		},
		{
			name:        "slack url scheme",
			yaml:        minimalYAML + "slack:\n  webhook_url: ftp://hooks.example.com\n",
			wantErrLike: "slack.webhook_url",
		},
		{
			name:        "bad date",
			yaml:        minimalYAML + "before: 06/01/2024\n",
			wantErrLike: "06/01/2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q, got nil", tt.wantErrLike)
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("Parse() error = %v, want error containing %q", err, tt.wantErrLike)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("mail: [unclosed"))
	if err == nil {
		t.Error("Parse() expected error for invalid YAML, got nil")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "request_delay: soon\n"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration", err)
	}
}

func TestDate_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"plain", "before: 2024-03-02\n", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), false},
		{"quoted", "before: \"2024-03-02\"\n", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), false},
		{"empty", "before: \"\"\n", time.Time{}, false},
		{"with time", "before: 2024-03-02T10:00:00Z\n", time.Time{}, true},
		{"list", "before: [2024]\n", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(minimalYAML + tt.value))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !cfg.Before.Equal(tt.want) {
				t.Errorf("Before = %v, want %v", cfg.Before.Time, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("smtp", func(t *testing.T) {
		t.Setenv(EnvSendFrom, "me@example.com")
		t.Setenv(EnvSendTo, "you@example.com")
		t.Setenv(EnvAppPassword, "app-secret")
		t.Setenv(EnvSendGridAPIKey, "")
		t.Setenv(EnvSlackWebhook, "")
		t.Setenv(EnvAPIURL, "")

		cfg := FromEnv()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if cfg.Mail.Transport != TransportSMTP {
			t.Errorf("Mail.Transport = %q, want smtp", cfg.Mail.Transport)
		}
		if cfg.Mail.SMTP.Username != "me@example.com" {
			t.Errorf("SMTP.Username = %q, want the sender", cfg.Mail.SMTP.Username)
		}
		if cfg.API.BaseURL != "https://ttp.cbp.dhs.gov/schedulerapi" {
			t.Errorf("API.BaseURL = %q, want the default", cfg.API.BaseURL)
		}
	})

	t.Run("sendgrid", func(t *testing.T) {
		t.Setenv(EnvSendFrom, "me@example.com")
		t.Setenv(EnvSendTo, "you@example.com")
		t.Setenv(EnvAppPassword, "")
		t.Setenv(EnvSendGridAPIKey, "SG.key")
		t.Setenv(EnvAPIURL, "http://localhost:9999/schedulerapi")

		cfg := FromEnv()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if cfg.Mail.Transport != TransportSendGrid {
			t.Errorf("Mail.Transport = %q, want sendgrid", cfg.Mail.Transport)
		}
		if cfg.API.BaseURL != "http://localhost:9999/schedulerapi" {
			t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(EnvSendFrom, "")
		t.Setenv(EnvSendTo, "")

		if err := FromEnv().Validate(); err == nil {
			t.Error("Validate() expected error without addresses, got nil")
		}
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// UNSET and MISSING are expected to not exist in environment
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
