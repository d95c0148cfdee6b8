package slotwatch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// wConfig holds mutable state during Watcher construction.
type wConfig struct {
	locationIDs  []LocationID
	cutoff       *time.Time
	limit        int
	silent       bool
	requestDelay time.Duration
	api          API
	notifier     Notifier
	calendarFile string
	logger       *slog.Logger
	sleep        func(ctx context.Context, d time.Duration) error
	rng          *rand.Rand
}

// Option is a function that configures a [Watcher] during construction.
//
// Options return an error if validation fails.
type Option func(*wConfig) error

// WithLocationIDs adds locations to poll. Locations are polled in the order
// given, every round. At least one is required.
//
// Example:
//
//	w, err := slotwatch.New(
//	    slotwatch.WithLocationIDs(5446, 5020),
//	    slotwatch.WithNotifier(n),
//	)
func WithLocationIDs(ids ...LocationID) Option {
	return func(cfg *wConfig) error {
		cfg.locationIDs = append(cfg.locationIDs, ids...)
		return nil
	}
}

// WithCutoff drops timeslots on or after the given date. Only the calendar
// date of t is used; the boundary is midnight of that day.
func WithCutoff(t time.Time) Option {
	return func(cfg *wConfig) error {
		if t.IsZero() {
			return errors.New("cutoff date cannot be zero")
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		cfg.cutoff = &d
		return nil
	}
}

// WithLimit sets how many raw slots are requested per location.
// Defaults to 10.
//
// Returns an error if n is zero or negative.
func WithLimit(n int) Option {
	return func(cfg *wConfig) error {
		if n <= 0 {
			return errors.New("limit must be positive")
		}
		cfg.limit = n
		return nil
	}
}

// WithSilent suppresses the "nothing found" notification of [Watcher.Check].
func WithSilent(silent bool) Option {
	return func(cfg *wConfig) error {
		cfg.silent = silent
		return nil
	}
}

// WithRequestDelay sets the base of the jittered pause taken after every
// request and between rounds. Defaults to 2 seconds; the actual pause is
// within one second either side.
//
// Returns an error if the duration is zero or negative.
func WithRequestDelay(d time.Duration) Option {
	return func(cfg *wConfig) error {
		if d <= 0 {
			return errors.New("request delay must be positive")
		}
		cfg.requestDelay = d
		return nil
	}
}

// WithAPI replaces the scheduler API client. Defaults to the production
// Trusted Traveler Programs API.
func WithAPI(api API) Option {
	return func(cfg *wConfig) error {
		if api == nil {
			return errors.New("api cannot be nil")
		}
		cfg.api = api
		return nil
	}
}

// WithNotifier sets where notifications are delivered. Required.
func WithNotifier(n Notifier) Option {
	return func(cfg *wConfig) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		cfg.notifier = n
		return nil
	}
}

// WithCalendarFile writes found timeslots as an iCalendar file at path
// after each notification. The file is replaced on every run.
func WithCalendarFile(path string) Option {
	return func(cfg *wConfig) error {
		cfg.calendarFile = path
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSleeper replaces how the watcher pauses between requests. The
// function must return ctx.Err() if ctx is done before d elapses.
// Mostly useful in tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(cfg *wConfig) error {
		if sleep == nil {
			return errors.New("sleeper cannot be nil")
		}
		cfg.sleep = sleep
		return nil
	}
}

// WithRand sets the random source used for jitter.
func WithRand(rng *rand.Rand) Option {
	return func(cfg *wConfig) error {
		cfg.rng = rng
		return nil
	}
}
