package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/ttp"
)

// consoleMailer prints the email instead of sending it.
type consoleMailer struct{}

func (consoleMailer) Name() string { return "console" }

func (consoleMailer) Send(_ context.Context, msg notify.Message) error {
	fmt.Printf("\n--- email to %s: %s ---\n%s\n---\n", msg.To, msg.Subject, msg.Body)
	return nil
}

func main() {
	// start mock scheduler (see mock_server.go); slots open on the third round
	go StartMockScheduler(":9999", 2)
	time.Sleep(100 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	notifier, err := notify.New(notify.Config{
		From: "bot@example.com",
		To:   "you@example.com",
	}, consoleMailer{}, logger)
	if err != nil {
		slog.Error("failed to create notifier", "error", err)
		os.Exit(1)
	}

	api := ttp.NewClient(
		ttp.NewHTTPClient(5*time.Second, slotwatch.UserAgent),
		"http://localhost:9999/schedulerapi",
		ttp.DefaultServiceName,
	)

	w, err := slotwatch.New(
		slotwatch.WithLocationIDs(5446, 5020),
		slotwatch.WithAPI(api),
		slotwatch.WithNotifier(notifier),
		slotwatch.WithRequestDelay(time.Second),
		slotwatch.WithCutoff(time.Now().AddDate(0, 1, 0)),
		slotwatch.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  slotwatch demo")
	fmt.Println("  Polling a mock scheduler on :9999; slots open on round 3.")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := w.Watch(ctx)
	if err != nil {
		slog.Error("watch error", "error", err)
		os.Exit(1)
	}
	slog.Info("demo finished", "rounds", report.Rounds)
}
