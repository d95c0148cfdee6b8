package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGridSender is the part of *sendgrid.Client the mailer uses.
type sendGridSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends email through the SendGrid v3 mail send API.
type SendGridMailer struct {
	client sendGridSender
}

// NewSendGridMailer creates a [SendGridMailer] authenticated with apiKey.
func NewSendGridMailer(apiKey string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey)}, nil
}

// Name implements [Mailer].
func (m *SendGridMailer) Name() string {
	return "sendgrid"
}

// Send implements [Mailer]. Any non-2xx response is a failure.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail("", msg.From),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Body,
		"",
	)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, truncateBody(resp.Body))
	}
	return nil
}

func truncateBody(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
