// Package config provides YAML and environment configuration for slotwatch.
//
// It is used by the slotwatch binary as an alternative to building a
// Watcher programmatically.
//
// Example configuration:
//
//	locations: [5446, 5020]
//	before: 2024-06-01
//	request_delay: 2s
//
//	mail:
//	  transport: smtp
//	  from: ${SEND_FROM}
//	  to: ${SEND_TO}
//	  smtp:
//	    username: ${SEND_FROM}
//	    password: ${APP_PASS}
//
//	slack:
//	  webhook_url: ${SLACK_WEBHOOK_URL:-}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/slotwatch/internal/model"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/ttp"
)

const (
	defaultLimit        = 10
	defaultRequestDelay = 2 * time.Second

	// minRequestDelay keeps the jittered pause (base +/- 1s) from going
	// negative.
	minRequestDelay = time.Second
)

// Mail transports.
const (
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"
)

// Environment variables read by [FromEnv].
const (
	EnvSendFrom       = "SEND_FROM"
	EnvSendTo         = "SEND_TO"
	EnvAppPassword    = "APP_PASS"
	EnvSendGridAPIKey = "SENDGRID_API_KEY"
	EnvSlackWebhook   = "SLACK_WEBHOOK_URL"
	EnvAPIURL         = "SLOTWATCH_API_URL"
)

// Config is the root configuration structure for slotwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse] or [FromEnv] to create a Config.
type Config struct {
	// Locations are the location ids to poll, in order.
	// May be empty when the ids come from the command line.
	Locations []int `yaml:"locations"`

	// Before drops timeslots on or after this date (YYYY-MM-DD).
	Before Date `yaml:"before"`

	// Limit caps how many slots are requested per location. Defaults to 10.
	Limit int `yaml:"limit"`

	// Silent suppresses the "nothing found" notification.
	Silent bool `yaml:"silent"`

	// RequestDelay is the base jittered pause between requests.
	// Defaults to 2s.
	RequestDelay Duration `yaml:"request_delay"`

	API      APIConfig      `yaml:"api"`
	Mail     MailConfig     `yaml:"mail"`
	Slack    SlackConfig    `yaml:"slack"`
	Calendar CalendarConfig `yaml:"calendar"`
}

// APIConfig points at the scheduler service.
type APIConfig struct {
	// BaseURL defaults to the production scheduler.
	BaseURL string `yaml:"base_url"`

	// ServiceName selects the program whose locations are listed.
	// Defaults to "Global Entry".
	ServiceName string `yaml:"service_name"`

	// Timeout bounds each request. Zero means no timeout.
	Timeout Duration `yaml:"timeout"`
}

// MailConfig configures the email notification.
type MailConfig struct {
	// Transport is "smtp" (default) or "sendgrid".
	Transport string `yaml:"transport"`

	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Subject string `yaml:"subject"`

	SMTP     SMTPConfig     `yaml:"smtp"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
}

// SMTPConfig holds SMTP submission settings. Host and port default to
// smtp.gmail.com:587; username defaults to the sender address.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

// SlackConfig enables an extra Slack webhook post when WebhookURL is set.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// CalendarConfig enables iCalendar export when Path is set.
type CalendarConfig struct {
	Path string `yaml:"path"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Date is a calendar date read from a YYYY-MM-DD scalar.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler for Date. The raw scalar is
// used so yaml's own timestamp resolution never applies.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("date must be a string, got %v", node.Kind)
	}
	s := strings.TrimSpace(node.Value)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	d.Time = t
	return nil
}

// IsSet reports whether a date was given.
func (d Date) IsSet() bool {
	return !d.IsZero()
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in every string setting except the
// transport name. Defaults are applied before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
//
// SEND_FROM and SEND_TO address the email. APP_PASS selects SMTP with the
// sender as username; otherwise SENDGRID_API_KEY selects SendGrid.
// SLACK_WEBHOOK_URL and SLOTWATCH_API_URL are optional. The result is not
// validated, so callers can fill in locations first.
func FromEnv() *Config {
	cfg := &Config{
		API: APIConfig{BaseURL: os.Getenv(EnvAPIURL)},
		Mail: MailConfig{
			From: os.Getenv(EnvSendFrom),
			To:   os.Getenv(EnvSendTo),
			SMTP: SMTPConfig{
				Username: os.Getenv(EnvSendFrom),
				Password: os.Getenv(EnvAppPassword),
			},
			SendGrid: SendGridConfig{APIKey: os.Getenv(EnvSendGridAPIKey)},
		},
		Slack: SlackConfig{WebhookURL: os.Getenv(EnvSlackWebhook)},
	}
	if cfg.Mail.SMTP.Password == "" && cfg.Mail.SendGrid.APIKey != "" {
		cfg.Mail.Transport = TransportSendGrid
	}
	cfg.applyDefaults()
	return cfg
}

// LocationIDs returns the configured locations as ids.
func (c *Config) LocationIDs() []model.LocationID {
	ids := make([]model.LocationID, len(c.Locations))
	for i, id := range c.Locations {
		ids[i] = model.LocationID(id)
	}
	return ids
}

func (c *Config) expand() error {
	fields := []struct {
		name string
		val  *string
	}{
		{"api.base_url", &c.API.BaseURL},
		{"api.service_name", &c.API.ServiceName},
		{"mail.from", &c.Mail.From},
		{"mail.to", &c.Mail.To},
		{"mail.subject", &c.Mail.Subject},
		{"mail.smtp.host", &c.Mail.SMTP.Host},
		{"mail.smtp.username", &c.Mail.SMTP.Username},
		{"mail.smtp.password", &c.Mail.SMTP.Password},
		{"mail.sendgrid.api_key", &c.Mail.SendGrid.APIKey},
		{"slack.webhook_url", &c.Slack.WebhookURL},
		{"calendar.path", &c.Calendar.Path},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.val = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Limit == 0 {
		c.Limit = defaultLimit
	}
	if c.RequestDelay == 0 {
		c.RequestDelay = Duration(defaultRequestDelay)
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = ttp.DefaultBaseURL
	}
	if c.API.ServiceName == "" {
		c.API.ServiceName = ttp.DefaultServiceName
	}
	if c.Mail.Transport == "" {
		c.Mail.Transport = TransportSMTP
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = notify.DefaultSubject
	}
	if c.Mail.SMTP.Host == "" {
		c.Mail.SMTP.Host = notify.DefaultSMTPHost
	}
	if c.Mail.SMTP.Port == 0 {
		c.Mail.SMTP.Port = notify.DefaultSMTPPort
	}
	if c.Mail.SMTP.Username == "" {
		c.Mail.SMTP.Username = c.Mail.From
	}
}

// Validate checks a configuration after defaults are applied. Locations
// are checked for sign only; an empty list is accepted.
func (c *Config) Validate() error {
	for i, id := range c.Locations {
		if id <= 0 {
			return fmt.Errorf("locations[%d]: id must be positive, got %d", i, id)
		}
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.RequestDelay.Duration() < minRequestDelay {
		return fmt.Errorf("request_delay must be at least %s, got %s", minRequestDelay, c.RequestDelay.Duration())
	}

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if c.API.Timeout.Duration() < 0 {
		return fmt.Errorf("api.timeout cannot be negative, got %s", c.API.Timeout.Duration())
	}

	if err := c.Mail.validate(); err != nil {
		return err
	}

	if c.Slack.WebhookURL != "" {
		if err := validateHTTPURL(c.Slack.WebhookURL); err != nil {
			return fmt.Errorf("slack.webhook_url: %w", err)
		}
	}
	return nil
}

func (m *MailConfig) validate() error {
	if m.From == "" {
		return errors.New("mail.from is required")
	}
	if m.To == "" {
		return errors.New("mail.to is required")
	}

	switch m.Transport {
	case TransportSMTP:
		if m.SMTP.Port < 1 || m.SMTP.Port > 65535 {
			return fmt.Errorf("mail.smtp.port must be between 1 and 65535, got %d", m.SMTP.Port)
		}
		if m.SMTP.Password == "" {
			return errors.New("mail.smtp.password is required for the smtp transport")
		}
	case TransportSendGrid:
		if m.SendGrid.APIKey == "" {
			return errors.New("mail.sendgrid.api_key is required for the sendgrid transport")
		}
	default:
		return fmt.Errorf("mail.transport must be %q or %q, got %q", TransportSMTP, TransportSendGrid, m.Transport)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}
	return nil
}
