package poller

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitter_WithinOneSecondOfBase(t *testing.T) {
	j := NewJitter(2*time.Second, rand.New(rand.NewPCG(1, 2)))

	seen := make(map[time.Duration]struct{})
	for i := 0; i < 5000; i++ {
		d := j.Next()
		require.GreaterOrEqual(t, d, time.Second)
		require.LessOrEqual(t, d, 3*time.Second)
		require.Zero(t, d%jitterStep, "delay %s not on a %s step", d, jitterStep)
		seen[d] = struct{}{}
	}

	// 21 possible values; with 5000 draws every one shows up
	assert.Len(t, seen, 2*jitterSteps+1)
}

func TestJitter_GlobalSource(t *testing.T) {
	j := NewJitter(2*time.Second, nil)
	for i := 0; i < 100; i++ {
		d := j.Next()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestJitter_NeverNegative(t *testing.T) {
	j := NewJitter(200*time.Millisecond, rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 500; i++ {
		assert.GreaterOrEqual(t, j.Next(), time.Duration(0))
	}
}

func TestSleep_Elapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep_ZeroDuration(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}
