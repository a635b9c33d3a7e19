package compositor

import "time"

// DefaultMaxHz is the default compose rate cap.
const DefaultMaxHz = 60

// Throttle caps how often frames are composed, independent of how often the
// clock advances. The clock may tick faster, composing is skipped until the
// interval has passed.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a throttle allowing at most maxHz calls per second.
// A non-positive rate falls back to the default.
func NewThrottle(maxHz float64) *Throttle {
	if maxHz <= 0 {
		maxHz = DefaultMaxHz
	}
	return &Throttle{interval: time.Duration(float64(time.Second) / maxHz)}
}

// Allow reports whether a frame may be composed now, and if so consumes the
// slot.
func (t *Throttle) Allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// Reset clears the throttle so the next Allow always passes. Called on
// seeks so a scrub never shows a stale frame.
func (t *Throttle) Reset() {
	t.last = time.Time{}
}
