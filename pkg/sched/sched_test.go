package sched

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Period(t *testing.T) {
	tests := []struct {
		name   string
		rateHz int
		want   time.Duration
	}{
		{name: "500 Hz", rateHz: 500, want: 2 * time.Millisecond},
		{name: "1 kHz", rateHz: 1000, want: time.Millisecond},
		{name: "50 Hz", rateHz: 50, want: 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.rateHz, time.Unix(0, 0))
			assert.Equal(t, tt.want, s.Period())
		})
	}
}

func TestScheduler_AverageRate(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(500, now)

	// Poll every 100us of simulated time for one second of wall clock.
	ticks := 0
	for i := 0; i < 10000; i++ {
		now = now.Add(100 * time.Microsecond)
		if s.Poll(now) {
			ticks++
		}
	}

	assert.InDelta(t, 500, ticks, 1, "one simulated second at 500 Hz")
}

func TestScheduler_JitterBoundedUnderRandomizedLoad(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	now := time.Unix(0, 0)
	s := New(500, now)
	period := s.Period()

	var tickTimes []time.Time
	for len(tickTimes) < 1000 {
		// Random per-iteration processing delay, always below one period.
		step := time.Duration(50+rng.Intn(1900)) * time.Microsecond
		now = now.Add(step)
		if s.Poll(now) {
			tickTimes = append(tickTimes, now)
		}
	}

	// Individual tick spacing may jitter by up to one period, never more.
	for i := 1; i < len(tickTimes); i++ {
		spacing := tickTimes[i].Sub(tickTimes[i-1])
		require.LessOrEqual(t, spacing, 2*period, "tick %d", i)
	}

	// The long-run average must converge on the configured period.
	avg := tickTimes[len(tickTimes)-1].Sub(tickTimes[0]) / time.Duration(len(tickTimes)-1)
	assert.InDelta(t, float64(period), float64(avg), float64(period)/10)
}

func TestScheduler_OverrunFiresExactlyOneTick(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(500, now)

	// A single iteration takes 2.5 periods. Exactly one tick fires for it;
	// the deficit is not paid back with catch-up ticks within the poll.
	now = now.Add(5 * time.Millisecond)
	assert.True(t, s.Poll(now))

	now = now.Add(10 * time.Microsecond)
	// The countdown is still in deficit, so the next poll fires again, but
	// still only once per poll.
	assert.True(t, s.Poll(now))
}

func TestScheduler_RateDegradesUnderSustainedOverrun(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(500, now)

	// Every iteration takes 1.5 periods. The scheduler fires once per
	// iteration and never catches up: 100 iterations span 300ms, which
	// would nominally hold 150 ticks, but only 100 fire.
	ticks := 0
	for i := 0; i < 100; i++ {
		now = now.Add(3 * time.Millisecond)
		if s.Poll(now) {
			ticks++
		}
	}

	assert.Equal(t, 100, ticks, "exactly one tick per overrunning iteration")
}

func TestScheduler_NoTickBeforePeriodElapses(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(500, now)

	now = now.Add(time.Millisecond)
	assert.False(t, s.Poll(now))

	now = now.Add(time.Millisecond)
	assert.True(t, s.Poll(now))
}
