package domain

import "time"

// Timer is a countdown anchored to a wall-clock start. Its remaining time is
// always derived from the anchor, never decremented.
type Timer struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Duration  time.Duration `json:"-"`
	StartedAt time.Time     `json:"startedAt"`
	Active    bool          `json:"active"`
}

// Remaining computes max(0, duration - (now - startedAt)).
func Remaining(now, startedAt time.Time, duration time.Duration) time.Duration {
	left := duration - now.Sub(startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingAt returns the frozen duration while paused.
func (t Timer) RemainingAt(now time.Time) time.Duration {
	if !t.Active {
		return t.Duration
	}
	return Remaining(now, t.StartedAt, t.Duration)
}

// RemainingSeconds floors, so a countdown shows 0 during its final second.
func (t Timer) RemainingSeconds(now time.Time) int {
	return Seconds(t.RemainingAt(now))
}

// Done reports a ticking timer whose displayed countdown has reached zero.
func (t Timer) Done(now time.Time) bool {
	return t.Active && t.RemainingSeconds(now) == 0
}

// Seconds converts a duration to whole seconds, rounding down.
func Seconds(d time.Duration) int {
	return int(d / time.Second)
}
