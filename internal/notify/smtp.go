package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultSMTPHost is Gmail's submission server, used with an app password.
	DefaultSMTPHost = "smtp.gmail.com"

	// DefaultSMTPPort is the STARTTLS submission port.
	DefaultSMTPPort = 587
)

// SMTPConfig configures an [SMTPMailer].
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends plain-text UTF-8 email with PLAIN auth. STARTTLS is used
// whenever the server offers it.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

// NewSMTPMailer creates an [SMTPMailer], defaulting host and port to Gmail.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("smtp port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("smtp username and password are required")
	}
	return &SMTPMailer{
		cfg:      cfg,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}, nil
}

// Name implements [Mailer].
func (m *SMTPMailer) Name() string {
	return "smtp"
}

// Addr returns the host:port the mailer dials.
func (m *SMTPMailer) Addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// Send implements [Mailer]. net/smtp has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	raw := buildMIME(msg, m.now(), m.cfg.Host)
	if err := m.sendMail(m.Addr(), auth, msg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("send to %s via %s: %w", msg.To, m.Addr(), err)
	}
	return nil
}

// buildMIME renders msg as an RFC 5322 message with CRLF line endings.
func buildMIME(msg Message, now time.Time, host string) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	header("From", msg.From)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), host))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
