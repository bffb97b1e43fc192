package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// chimeNotes is the C major arpeggio the chimer walks through, in Hz
var chimeNotes = []float64{1046.50, 1318.51, 1567.98, 2093.00}

const chimeDuration = 1200 * time.Millisecond

// maxVoices caps overlapping bells; further rings are dropped until one ends
const maxVoices = 4

// Chimer plays a bell note on each Ring once started
type Chimer struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	volume  float64
	next    int
	started bool
}

// NewChimer creates a stopped chimer at volume in [0, 1]
func NewChimer(volume float64) *Chimer {
	return &Chimer{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Start opens the audio device; a failure leaves the chimer silent
func (c *Chimer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.started = true
	return nil
}

// Ring queues the next note of the arpeggio; no-op until Start succeeds
func (c *Chimer) Ring() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	note := chimeNotes[c.next%len(chimeNotes)]
	c.next++
	bell := newVolume(NewBellGenerator(SampleRate, note, chimeDuration), c.volume)

	speaker.Lock()
	if c.mixer.Len() < maxVoices {
		c.mixer.Add(bell)
	}
	speaker.Unlock()
}

// Close silences pending bells and releases the device
func (c *Chimer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	speaker.Clear()
	speaker.Close()
	c.started = false
}
