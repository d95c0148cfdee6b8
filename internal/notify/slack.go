package notify

import (
	"context"
	"errors"
	"net/http"

	"github.com/slack-go/slack"
)

// SlackChannel posts the notification text to a Slack incoming webhook.
type SlackChannel struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackChannel creates a [SlackChannel]. A nil httpClient uses
// http.DefaultClient.
func NewSlackChannel(webhookURL string, httpClient *http.Client) (*SlackChannel, error) {
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SlackChannel{webhookURL: webhookURL, httpClient: httpClient}, nil
}

// Name implements [Channel].
func (s *SlackChannel) Name() string {
	return "slack"
}

// Post implements [Channel].
func (s *SlackChannel) Post(ctx context.Context, text string) error {
	return slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, &slack.WebhookMessage{
		Text: text,
	})
}
