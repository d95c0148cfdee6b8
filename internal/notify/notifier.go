// Package notify renders poll results and delivers them to the operator.
//
// [Format] turns a poll result into text blocks. A [Notifier] echoes the
// blocks to a console writer, emails them through a [Mailer], and posts
// them to any additional [Channel]. Delivery failures are reported as
// [*DeliveryError] and are never retried.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultSubject is the email subject when none is configured.
const DefaultSubject = "Global Entry - book Quick!"

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer sends an email.
type Mailer interface {
	// Name identifies the transport in errors and logs.
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Channel is an additional destination for the notification text.
type Channel interface {
	Name() string
	Post(ctx context.Context, text string) error
}

// DeliveryError reports that a transport rejected a notification.
type DeliveryError struct {
	Transport string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s failed: %v", e.Transport, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Config holds the fixed addressing of a [Notifier].
type Config struct {
	// From is the sender address.
	From string

	// To is the recipient address.
	To string

	// Subject defaults to [DefaultSubject].
	Subject string

	// Console receives a copy of every block. Defaults to os.Stdout.
	Console io.Writer
}

// Notifier delivers formatted text blocks.
type Notifier struct {
	cfg      Config
	mailer   Mailer
	channels []Channel
	logger   *slog.Logger
}

// New creates a [Notifier]. A mailer and both addresses are required.
func New(cfg Config, mailer Mailer, logger *slog.Logger, channels ...Channel) (*Notifier, error) {
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required")
	}
	if cfg.To == "" {
		return nil, errors.New("recipient address is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}

	var chans []Channel
	for _, ch := range channels {
		if ch != nil {
			chans = append(chans, ch)
		}
	}

	return &Notifier{
		cfg:      cfg,
		mailer:   mailer,
		channels: chans,
		logger:   logger,
	}, nil
}

// Notify prints every block to the console, emails the blocks as one
// message, then posts them to each extra channel. The first failure stops
// delivery and is returned as a [*DeliveryError].
func (n *Notifier) Notify(ctx context.Context, blocks []string) error {
	for _, block := range blocks {
		_, _ = fmt.Fprintln(n.cfg.Console, block)
	}

	body := Body(blocks)

	msg := Message{
		From:    n.cfg.From,
		To:      n.cfg.To,
		Subject: n.cfg.Subject,
		Body:    body,
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return &DeliveryError{Transport: n.mailer.Name(), Err: err}
	}
	n.logger.Info("notification emailed",
		"transport", n.mailer.Name(),
		"to", n.cfg.To,
		"blocks", len(blocks),
	)

	for _, ch := range n.channels {
		if err := ch.Post(ctx, body); err != nil {
			return &DeliveryError{Transport: ch.Name(), Err: err}
		}
		n.logger.Info("notification posted", "transport", ch.Name())
	}
	return nil
}

// Body joins blocks into a message body, separated by blank lines.
func Body(blocks []string) string {
	return strings.Join(blocks, "\n\n")
}
