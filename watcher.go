package slotwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/slotwatch/internal/export"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/poller"
	"github.com/jpalmerr/slotwatch/internal/ttp"
)

const (
	defaultLimit        = 10
	defaultRequestDelay = 2 * time.Second

	// UserAgent is sent with every scheduler API request.
	UserAgent = "slotwatch/1.0"
)

// API is the scheduler service the watcher polls.
type API interface {
	// Locations returns the label of every known location.
	Locations(ctx context.Context) (LocationMapping, error)

	// Timeslots returns up to limit open timeslots for a location,
	// deduplicated and sorted ascending.
	Timeslots(ctx context.Context, id LocationID, limit int) (TimeslotSet, error)
}

// Notifier delivers formatted notification text.
type Notifier interface {
	Notify(ctx context.Context, blocks []string) error
}

// Report describes a finished run.
type Report struct {
	// RunID correlates the run's log lines.
	RunID string

	// Locations is the mapping resolved at the start of the run.
	Locations LocationMapping

	// Result is the last round's findings.
	Result *PollResult

	// Rounds is how many polling rounds ran.
	Rounds int

	// Messages are the formatted notification blocks.
	Messages []string

	// Notified is false when delivery was skipped because there was nothing
	// to say.
	Notified bool

	// CalendarFile is the path written, if any.
	CalendarFile string
}

// Watcher polls for open timeslots and notifies when it finds some.
//
// A Watcher is created using [New] with functional options and run with
// [Watcher.Watch] or [Watcher.Check]:
//
//	w, err := slotwatch.New(
//	    slotwatch.WithLocationIDs(5446, 5020),
//	    slotwatch.WithNotifier(n),
//	)
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	report, err := w.Watch(ctx) // blocks until a slot is found or ctx is cancelled
//
// Runs are strictly sequential. A Watcher must not be run concurrently.
type Watcher struct {
	locationIDs  []LocationID
	cutoff       *time.Time
	limit        int
	silent       bool
	requestDelay time.Duration
	api          API
	notifier     Notifier
	calendarFile string
	logger       *slog.Logger
	sleep        poller.Sleeper
	jitter       *poller.Jitter
}

// New creates a [Watcher] with the given options.
//
// At least one location ([WithLocationIDs]) and a notifier ([WithNotifier])
// are required. Other options default to:
//   - Limit: 10
//   - Request delay: 2 seconds
//   - API: the production Trusted Traveler Programs scheduler
//   - Logger: slog.Default()
func New(opts ...Option) (*Watcher, error) {
	cfg := &wConfig{
		limit:        defaultLimit,
		requestDelay: defaultRequestDelay,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.locationIDs) == 0 {
		return nil, errors.New("at least one location id is required")
	}
	if cfg.notifier == nil {
		return nil, errors.New("a notifier is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	api := cfg.api
	if api == nil {
		api = ttp.NewClient(ttp.NewHTTPClient(0, UserAgent), ttp.DefaultBaseURL, ttp.DefaultServiceName)
	}

	sleep := poller.Sleeper(poller.Sleep)
	if cfg.sleep != nil {
		sleep = cfg.sleep
	}

	return &Watcher{
		locationIDs:  append([]LocationID(nil), cfg.locationIDs...),
		cutoff:       cfg.cutoff,
		limit:        cfg.limit,
		silent:       cfg.silent,
		requestDelay: cfg.requestDelay,
		api:          api,
		notifier:     cfg.notifier,
		calendarFile: cfg.calendarFile,
		logger:       logger,
		sleep:        sleep,
		jitter:       poller.NewJitter(cfg.requestDelay, cfg.rng),
	}, nil
}

// LocationIDs returns a copy of the configured location ids.
func (w *Watcher) LocationIDs() []LocationID {
	return append([]LocationID(nil), w.locationIDs...)
}

// Limit returns the per-location slot limit.
func (w *Watcher) Limit() int {
	return w.limit
}

// RequestDelay returns the base jittered delay.
func (w *Watcher) RequestDelay() time.Duration {
	return w.requestDelay
}

// Cutoff returns the cutoff date and whether one is set.
func (w *Watcher) Cutoff() (time.Time, bool) {
	if w.cutoff == nil {
		return time.Time{}, false
	}
	return *w.cutoff, true
}

// Locations resolves the label of every location known to the API.
func (w *Watcher) Locations(ctx context.Context) (LocationMapping, error) {
	mapping, err := w.api.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve locations: %w", err)
	}
	return mapping, nil
}

// Watch polls every location round after round until one round finds a
// timeslot, then notifies and returns. It only stops early when ctx is
// cancelled, returning ctx.Err().
func (w *Watcher) Watch(ctx context.Context) (*Report, error) {
	return w.run(ctx, true)
}

// Check polls every location once and notifies with whatever it found.
// When nothing is found and silent is set, no notification is sent.
func (w *Watcher) Check(ctx context.Context) (*Report, error) {
	return w.run(ctx, false)
}

func (w *Watcher) run(ctx context.Context, untilFound bool) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := w.logger.With("run_id", report.RunID)

	attrs := []any{
		"locations", len(w.locationIDs),
		"limit", w.limit,
		"request_delay", w.requestDelay.String(),
		"until_found", untilFound,
	}
	if w.cutoff != nil {
		attrs = append(attrs, "before", w.cutoff.Format("2006-01-02"))
	}
	logger.Info("slotwatch starting", attrs...)

	mapping, err := w.Locations(ctx)
	if err != nil {
		return report, err
	}
	report.Locations = mapping
	for _, id := range w.locationIDs {
		if _, ok := mapping[id]; !ok {
			logger.Warn("location id not in location list", "location_id", int(id))
		}
	}

	p := poller.New(w.api, w.jitter, w.sleep, logger)
	q := poller.Query{LocationIDs: w.locationIDs, Cutoff: w.cutoff, Limit: w.limit}

	var result *PollResult
	if untilFound {
		result, err = p.PollUntilFound(ctx, q)
	} else {
		result, err = p.PollRound(ctx, q)
	}
	report.Rounds = p.Rounds()
	if err != nil {
		return report, err
	}
	report.Result = result

	logger.Info("polling finished", "rounds", report.Rounds, "slots", result.Count())

	report.Messages = notify.Format(mapping, result, w.silent)
	if notify.BannerOnly(report.Messages) {
		logger.Info("nothing found, notification suppressed")
	} else {
		if err := w.notifier.Notify(ctx, report.Messages); err != nil {
			return report, err
		}
		report.Notified = true
	}

	if w.calendarFile != "" && result.Any() {
		if err := export.WriteCalendarFile(w.calendarFile, mapping, result, time.Now()); err != nil {
			return report, err
		}
		report.CalendarFile = w.calendarFile
		logger.Info("calendar written", "path", w.calendarFile)
	}

	return report, nil
}
