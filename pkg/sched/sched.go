// Package sched provides the fixed-period tick source that paces the
// acquisition pipeline. It is a pure busy-poll design: the caller polls as
// fast as it likes, passing its own clock observations, and the scheduler
// decides when a tick is due using elapsed-time accounting. No hardware
// timer interrupt and no sleeping is involved.
package sched

import "time"

// Scheduler emits logical ticks at a configured target rate independent of
// how long the surrounding work takes. It maintains a countdown seeded with
// one tick period; every poll subtracts the wall-clock microseconds elapsed
// since the previous observation, and when the countdown goes non-positive
// a tick fires and the countdown is incremented by exactly one period.
//
// The countdown is never backfilled to zero and never fires multiple
// catch-up ticks per poll. If the work between two polls exceeds one tick
// period, the achieved rate silently degrades instead of catching up. That
// is a deliberate property of the design, not a bug.
type Scheduler struct {
	period    int64 // tick period in microseconds
	countdown int64
	last      time.Time
}

// New creates a scheduler targeting rateHz ticks per second, with now as
// the initial clock observation. Callers pass their own time source to
// every Poll, so tests can drive the scheduler with a simulated clock.
func New(rateHz int, now time.Time) *Scheduler {
	period := int64(time.Second/time.Microsecond) / int64(rateHz)
	return &Scheduler{
		period:    period,
		countdown: period,
		last:      now,
	}
}

// Poll advances the countdown by the time elapsed since the previous
// observation and reports whether a tick fires. At most one tick fires per
// call regardless of how much time has passed.
func (s *Scheduler) Poll(now time.Time) bool {
	elapsed := now.Sub(s.last).Microseconds()
	s.last = now
	s.countdown -= elapsed
	if s.countdown <= 0 {
		s.countdown += s.period
		return true
	}
	return false
}

// Period returns the configured tick period.
func (s *Scheduler) Period() time.Duration {
	return time.Duration(s.period) * time.Microsecond
}
