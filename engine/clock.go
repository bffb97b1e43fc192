package engine

import (
	"sync"
	"time"
)

// TimeProvider supplies wall time; tests substitute MockTimeProvider
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock
type SystemTime struct{}

func (SystemTime) Now() time.Time {
	return time.Now()
}

// MockTimeProvider provides a controllable time source for testing
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockTimeProvider creates a new mock time provider with the given start time
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

// Now returns the current mocked time
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Advance advances the current time by the given duration
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// PausableClock is scene time: wall time minus every paused interval
type PausableClock struct {
	tp          TimeProvider
	start       time.Time
	paused      bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewPausableClock starts scene time at zero
func NewPausableClock(tp TimeProvider) *PausableClock {
	return &PausableClock{tp: tp, start: tp.Now()}
}

// Elapsed returns scene seconds since start, frozen while paused
func (c *PausableClock) Elapsed() float64 {
	now := c.tp.Now()
	if c.paused {
		now = c.pauseStart
	}
	return (now.Sub(c.start) - c.totalPaused).Seconds()
}

// Pause freezes scene time
func (c *PausableClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pauseStart = c.tp.Now()
}

// Resume continues scene time from where it froze
func (c *PausableClock) Resume() {
	if !c.paused {
		return
	}
	c.totalPaused += c.tp.Now().Sub(c.pauseStart)
	c.paused = false
	c.pauseStart = time.Time{}
}

// Toggle flips the pause state and reports whether the clock is now paused
func (c *PausableClock) Toggle() bool {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
	return c.paused
}

func (c *PausableClock) IsPaused() bool {
	return c.paused
}
