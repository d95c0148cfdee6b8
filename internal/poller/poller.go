package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/slotwatch/internal/model"
)

// SlotSource fetches the open timeslots of one location.
//
// Implementations return the set deduplicated and sorted ascending.
type SlotSource interface {
	Timeslots(ctx context.Context, id model.LocationID, limit int) (model.TimeslotSet, error)
}

// FetchFiltered fetches the timeslots of a location and, when cutoff is not
// nil, keeps only those strictly before midnight of the cutoff date.
func FetchFiltered(ctx context.Context, src SlotSource, id model.LocationID, limit int, cutoff *time.Time) (model.TimeslotSet, error) {
	slots, err := src.Timeslots(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	if cutoff == nil {
		return slots, nil
	}
	return slots.Before(*cutoff), nil
}

// Query describes what a [Poller] asks for every round.
type Query struct {
	// LocationIDs are polled in this order every round.
	LocationIDs []model.LocationID

	// Cutoff drops timeslots at or after this instant when not nil.
	Cutoff *time.Time

	// Limit caps how many raw slots are requested per location.
	Limit int
}

// Validate reports whether the query can be polled.
func (q Query) Validate() error {
	if len(q.LocationIDs) == 0 {
		return errors.New("at least one location id is required")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", q.Limit)
	}
	return nil
}

// Poller drives a [SlotSource] across locations in sequential rounds.
//
// A Poller performs one request at a time and sleeps a jittered delay after
// every location. It is not safe for concurrent use.
type Poller struct {
	source SlotSource
	jitter *Jitter
	sleep  Sleeper
	logger *slog.Logger

	rounds int
}

// New creates a [Poller]. A nil sleep uses [Sleep]; a nil logger uses
// [slog.Default].
func New(source SlotSource, jitter *Jitter, sleep Sleeper, logger *slog.Logger) *Poller {
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source: source,
		jitter: jitter,
		sleep:  sleep,
		logger: logger,
	}
}

// Rounds returns how many rounds have completed since the Poller was created.
func (p *Poller) Rounds() int {
	return p.rounds
}

// PollRound queries every location once, in order, and returns a fresh
// result. A jittered delay follows every location, the last one included.
//
// The first fetch error aborts the round.
func (p *Poller) PollRound(ctx context.Context, q Query) (*model.PollResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	round := p.rounds + 1
	result := model.NewPollResult(len(q.LocationIDs))

	for _, id := range q.LocationIDs {
		slots, err := FetchFiltered(ctx, p.source, id, q.Limit, q.Cutoff)
		if err != nil {
			return nil, fmt.Errorf("round %d: location %d: %w", round, id, err)
		}
		result.Set(id, slots)

		delay := p.jitter.Next()
		p.logger.Debug("location polled",
			"round", round,
			"location_id", int(id),
			"slots", len(slots),
			"delay", delay.String(),
		)

		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	p.rounds = round
	p.logger.Info("round complete",
		"round", round,
		"locations", result.Len(),
		"slots", result.Count(),
	)
	return result, nil
}

// PollUntilFound repeats rounds until at least one location has a timeslot
// and returns that round's result. A further jittered delay separates
// rounds. There is no round limit; cancel ctx to stop early, in which case
// ctx.Err() is returned.
func (p *Poller) PollUntilFound(ctx context.Context, q Query) (*model.PollResult, error) {
	for {
		result, err := p.PollRound(ctx, q)
		if err != nil {
			return nil, err
		}
		if result.Any() {
			return result, nil
		}

		delay := p.jitter.Next()
		p.logger.Debug("nothing found, waiting for next round", "delay", delay.String())
		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
