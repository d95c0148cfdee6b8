package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockMailer implements Mailer for testing.
type MockMailer struct {
	SendFn func(ctx context.Context, msg Message) error
	sent   []Message
}

func (m *MockMailer) Name() string { return "mock" }

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return nil
}

// MockChannel implements Channel for testing.
type MockChannel struct {
	PostFn func(ctx context.Context, text string) error
	posted []string
}

func (m *MockChannel) Name() string { return "mock-channel" }

func (m *MockChannel) Post(ctx context.Context, text string) error {
	m.posted = append(m.posted, text)
	if m.PostFn != nil {
		return m.PostFn(ctx, text)
	}
	return nil
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{From: "a@x", To: "b@x"}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{To: "b@x"}, &MockMailer{}, nil)
	assert.Error(t, err)

	_, err = New(Config{From: "a@x"}, &MockMailer{}, nil)
	assert.Error(t, err)

	n, err := New(Config{From: "a@x", To: "b@x"}, &MockMailer{}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, n.channels, "nil channels are dropped")
}

func TestNotifier_Notify(t *testing.T) {
	var console bytes.Buffer
	mailer := &MockMailer{}
	channel := &MockChannel{}

	n, err := New(Config{From: "bot@example.com", To: "me@example.com", Console: &console}, mailer, testLogger(), channel)
	require.NoError(t, err)

	blocks := []string{Banner, "Location A (City, ST) (5446)\n    March 1, 2024 (Fri) @ 9:00 AM"}
	require.NoError(t, n.Notify(context.Background(), blocks))

	assert.Equal(t, Banner+"\n"+blocks[1]+"\n", console.String())

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "bot@example.com", msg.From)
	assert.Equal(t, "me@example.com", msg.To)
	assert.Equal(t, DefaultSubject, msg.Subject)
	assert.Equal(t, Banner+"\n\n"+blocks[1], msg.Body)

	assert.Equal(t, []string{msg.Body}, channel.posted)
}

func TestNotifier_MailerFailure(t *testing.T) {
	boom := errors.New("535 authentication failed")
	mailer := &MockMailer{SendFn: func(context.Context, Message) error { return boom }}
	channel := &MockChannel{}

	n, err := New(Config{From: "a@x", To: "b@x", Console: io.Discard}, mailer, testLogger(), channel)
	require.NoError(t, err)

	err = n.Notify(context.Background(), []string{Banner})
	require.Error(t, err)

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "mock", de.Transport)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "535")
	assert.Empty(t, channel.posted, "channels are skipped after a mail failure")
}

func TestNotifier_ChannelFailure(t *testing.T) {
	boom := errors.New("invalid_token")
	channel := &MockChannel{PostFn: func(context.Context, string) error { return boom }}

	n, err := New(Config{From: "a@x", To: "b@x", Console: io.Discard}, &MockMailer{}, testLogger(), channel)
	require.NoError(t, err)

	err = n.Notify(context.Background(), []string{Banner})

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "mock-channel", de.Transport)
}

func TestNotifier_CustomSubject(t *testing.T) {
	mailer := &MockMailer{}
	n, err := New(Config{From: "a@x", To: "b@x", Subject: "Slots!", Console: io.Discard}, mailer, testLogger())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), []string{Banner}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Slots!", mailer.sent[0].Subject)
}
