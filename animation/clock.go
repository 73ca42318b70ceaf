// ABOUTME: Pausable animation clock layered over an injectable TimeSource.
// ABOUTME: Paused intervals are excluded from animation time so progress never jumps on resume.
package animation

import (
	"sync"
	"time"
)

// TimeSource supplies wall-clock readings. Tests inject a fake source to
// drive animation timing deterministically.
type TimeSource interface {
	Now() time.Time
}

// SystemTime is the default TimeSource backed by time.Now.
type SystemTime struct{}

// Now returns the current system time.
func (SystemTime) Now() time.Time { return time.Now() }

// Clock reports animation time: wall time minus every interval spent paused.
// While paused, Now is frozen at the moment Pause was called.
type Clock struct {
	mu          sync.RWMutex
	source      TimeSource
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewClock returns a running Clock over the given source. A nil source
// falls back to SystemTime.
func NewClock(source TimeSource) *Clock {
	if source == nil {
		source = SystemTime{}
	}
	return &Clock{source: source}
}

// Now returns the current animation time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.paused {
		return c.pausedAt.Add(-c.totalPaused)
	}
	return c.source.Now().Add(-c.totalPaused)
}

// Pause freezes animation time. Pausing an already paused clock is a no-op.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.source.Now()
}

// Resume continues animation time, accounting the pause that just ended.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.totalPaused += c.source.Now().Sub(c.pausedAt)
	c.paused = false
	c.pausedAt = time.Time{}
}

// IsPaused reports whether the clock is frozen.
func (c *Clock) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// TotalPaused returns the cumulative paused duration, including the current
// pause if one is in progress.
func (c *Clock) TotalPaused() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.totalPaused
	if c.paused {
		total += c.source.Now().Sub(c.pausedAt)
	}
	return total
}
