package playback

import (
	"sync"
	"time"
)

// Clock holds the virtual playhead position in seconds. While playing it
// advances by the wall-clock delta between Advance calls, not by a fixed
// step, so long frames never accumulate drift.
type Clock struct {
	mu      sync.Mutex
	virtual float64
	playing bool
	last    time.Time
}

// NewClock creates a paused clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Time returns the current virtual time in seconds.
func (c *Clock) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.virtual
}

// Playing reports whether the clock is advancing.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// SetTime moves the playhead to t, clamped to zero. The advance baseline is
// reset so the next frame does not fold the seek into its delta.
func (c *Clock) SetTime(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t < 0 {
		t = 0
	}
	c.virtual = t
	c.last = time.Time{}
}

// SetPlaying starts or stops the clock. Starting resets the advance
// baseline so the first frame after a pause contributes no elapsed time.
func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing == playing {
		return
	}
	c.playing = playing
	c.last = time.Time{}
}

// Toggle flips between playing and paused and returns the new state.
func (c *Clock) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = !c.playing
	c.last = time.Time{}
	return c.playing
}

// Advance moves virtual time forward by the wall-clock delta since the
// previous call and returns the new virtual time. The first call after
// starting establishes the baseline and advances nothing. Paused clocks do
// not advance.
func (c *Clock) Advance(now time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return c.virtual
	}
	if c.last.IsZero() {
		c.last = now
		return c.virtual
	}

	if dt := now.Sub(c.last).Seconds(); dt > 0 {
		c.virtual += dt
	}
	c.last = now
	return c.virtual
}
