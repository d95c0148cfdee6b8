package poller

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	// jitterStep is the granularity of the randomized delay.
	jitterStep = 100 * time.Millisecond

	// jitterSteps is how many steps the delay may move either side of base.
	jitterSteps = 10
)

// Jitter produces randomized pauses around a fixed base delay.
//
// Each value is base + k*100ms with k uniform in [-10, 10], so results lie
// in [base-1s, base+1s]. Values never go below zero.
type Jitter struct {
	base time.Duration
	rng  *rand.Rand
}

// NewJitter creates a [Jitter] around base. A nil rng uses the global
// math/rand/v2 source.
func NewJitter(base time.Duration, rng *rand.Rand) *Jitter {
	return &Jitter{base: base, rng: rng}
}

// Base returns the base delay.
func (j *Jitter) Base() time.Duration {
	return j.base
}

// Next returns the next delay. It does not sleep.
func (j *Jitter) Next() time.Duration {
	var n int
	if j.rng != nil {
		n = j.rng.IntN(2*jitterSteps + 1)
	} else {
		n = rand.IntN(2*jitterSteps + 1)
	}

	d := j.base + time.Duration(n-jitterSteps)*jitterStep
	if d < 0 {
		return 0
	}
	return d
}

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real [Sleeper].
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
