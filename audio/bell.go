// Package audio synthesizes the tree-top chime with beep
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the output rate for every generated sound
const SampleRate = beep.SampleRate(44100)

// attack ramps the onset to avoid a click
const attack = 5 * time.Millisecond

type partial struct {
	ratio float64 // frequency multiple of the fundamental
	amp   float64
	decay float64 // exponential decay rate per second
}

// bellPartials approximate a small struck bell, upper partials die out first
var bellPartials = []partial{
	{ratio: 1.0, amp: 0.55, decay: 3},
	{ratio: 2.0, amp: 0.22, decay: 5},
	{ratio: 2.76, amp: 0.14, decay: 7},
	{ratio: 5.4, amp: 0.09, decay: 11},
}

// BellGenerator streams a decaying bell tone for a fixed duration
type BellGenerator struct {
	rate     beep.SampleRate
	freq     float64
	position int
	length   int
	attackN  int
}

// NewBellGenerator creates a bell at fundamental freq lasting d
func NewBellGenerator(rate beep.SampleRate, freq float64, d time.Duration) *BellGenerator {
	return &BellGenerator{
		rate:    rate,
		freq:    freq,
		length:  rate.N(d),
		attackN: max(rate.N(attack), 1),
	}
}

// Stream fills samples with the mono bell on both channels
func (b *BellGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.length {
			return i, i > 0
		}

		t := float64(b.position) / float64(b.rate)
		var val float64
		for _, p := range bellPartials {
			val += p.amp * math.Exp(-p.decay*t) * math.Sin(2*math.Pi*b.freq*p.ratio*t)
		}
		if b.position < b.attackN {
			val *= float64(b.position) / float64(b.attackN)
		}

		samples[i][0] = val
		samples[i][1] = val
		b.position++
	}
	return len(samples), true
}

func (b *BellGenerator) Err() error { return nil }

// newVolume scales s by vol, silent at or below zero
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
