package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/ttp"
)

const slackTimeout = 10 * time.Second

// BuildAPI creates the scheduler client described by cfg.
func BuildAPI(cfg *Config) *ttp.Client {
	getter := ttp.NewHTTPClient(cfg.API.Timeout.Duration(), slotwatch.UserAgent)
	return ttp.NewClient(getter, cfg.API.BaseURL, cfg.API.ServiceName)
}

// BuildMailer creates the email transport selected by mail.transport.
func BuildMailer(m MailConfig) (notify.Mailer, error) {
	switch m.Transport {
	case TransportSMTP, "":
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     m.SMTP.Host,
			Port:     m.SMTP.Port,
			Username: m.SMTP.Username,
			Password: m.SMTP.Password,
		})
		if err != nil {
			return nil, err
		}
		return mailer, nil
	case TransportSendGrid:
		mailer, err := notify.NewSendGridMailer(m.SendGrid.APIKey)
		if err != nil {
			return nil, err
		}
		return mailer, nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", m.Transport)
	}
}

// BuildNotifier creates a notifier that echoes to console, emails through
// the configured transport and, when a webhook is set, posts to Slack.
func BuildNotifier(cfg *Config, console io.Writer, logger *slog.Logger) (slotwatch.Notifier, error) {
	mailer, err := BuildMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("mail: %w", err)
	}

	var channels []notify.Channel
	if cfg.Slack.WebhookURL != "" {
		slack, err := notify.NewSlackChannel(cfg.Slack.WebhookURL, &http.Client{Timeout: slackTimeout})
		if err != nil {
			return nil, fmt.Errorf("slack: %w", err)
		}
		channels = append(channels, slack)
	}

	n, err := notify.New(notify.Config{
		From:    cfg.Mail.From,
		To:      cfg.Mail.To,
		Subject: cfg.Mail.Subject,
		Console: console,
	}, mailer, logger, channels...)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// BuildOptions converts a configuration into Watcher options.
//
// Locations are only added when present, so callers can append
// [slotwatch.WithLocationIDs] from another source.
func BuildOptions(cfg *Config, console io.Writer, logger *slog.Logger) ([]slotwatch.Option, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notifier, err := BuildNotifier(cfg, console, logger)
	if err != nil {
		return nil, err
	}

	opts := []slotwatch.Option{
		slotwatch.WithAPI(BuildAPI(cfg)),
		slotwatch.WithNotifier(notifier),
		slotwatch.WithLimit(cfg.Limit),
		slotwatch.WithSilent(cfg.Silent),
		slotwatch.WithRequestDelay(cfg.RequestDelay.Duration()),
		slotwatch.WithLogger(logger),
	}
	if len(cfg.Locations) > 0 {
		opts = append(opts, slotwatch.WithLocationIDs(cfg.LocationIDs()...))
	}
	if cfg.Before.IsSet() {
		opts = append(opts, slotwatch.WithCutoff(cfg.Before.Time))
	}
	if cfg.Calendar.Path != "" {
		opts = append(opts, slotwatch.WithCalendarFile(cfg.Calendar.Path))
	}
	return opts, nil
}
