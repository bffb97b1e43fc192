package engine

import (
	"context"
	"time"
)

// MaxDelta caps a frame step so a stall does not teleport the scene
const MaxDelta = 0.1

// Pacer schedules frames against absolute deadlines
// Render time shortens the wait; an overrun restarts the schedule from now
// instead of bursting to catch up
type Pacer struct {
	tp       TimeProvider
	interval time.Duration
	next     time.Time
}

// NewPacer paces at fps frames per second, clamped to [1, 120]
func NewPacer(fps int, tp TimeProvider) *Pacer {
	fps = min(max(fps, 1), 120)
	return &Pacer{
		tp:       tp,
		interval: time.Second / time.Duration(fps),
		next:     tp.Now(),
	}
}

// Interval returns the target frame duration
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Delay advances the deadline and returns how long to sleep from now
func (p *Pacer) Delay() time.Duration {
	now := p.tp.Now()
	p.next = p.next.Add(p.interval)
	d := p.next.Sub(now)
	if d <= 0 {
		p.next = now
		return 0
	}
	return d
}

// Wait sleeps until the next deadline; it returns ctx.Err on cancellation
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.Delay()
	if d == 0 {
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

// clampDelta converts a wall step to seconds within [0, MaxDelta]
func clampDelta(d time.Duration) float64 {
	return min(max(d.Seconds(), 0), MaxDelta)
}
