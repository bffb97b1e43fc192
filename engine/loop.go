// Package engine drives the compositor: frame pacing, input, resize and the HUD
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/scene"
	"github.com/lixenwraith/tinsel/terminal"
)

// Display is the terminal side of the loop, implemented by the raw ANSI terminal
// and by the tcell screen adapter
type Display interface {
	Size() (int, int)
	Write(segs []terminal.Segment) error
	BytesWritten() uint64
	PollEvent() terminal.Event
	PostEvent(terminal.Event)
}

// Chime is rung when the tree-top star reaches full brightness
type Chime interface {
	Ring()
}

// Options configures a Loop
type Options struct {
	FPS    int
	HUD    bool
	Logger *slog.Logger
	Chime  Chime        // nil disables sound
	Time   TimeProvider // nil uses SystemTime
}

var (
	hudColor   = raster.RGB{R: 200, G: 200, B: 210}
	hudDim     = raster.RGB{R: 120, G: 120, B: 130}
	pauseColor = raster.RGB{R: 255, G: 200, B: 60}
)

// helpText lists the keys, digits cover the registered layers up to 9
func helpText(layers int) string {
	var digits string
	switch {
	case layers == 1:
		digits = "1 layer  "
	case layers > 1:
		digits = fmt.Sprintf("1-%d layers  ", min(layers, 9))
	}
	return "q quit  " + digits + "space pause  h hud  r redraw"
}

// Loop owns the frame cycle for one display
type Loop struct {
	disp  Display
	comp  *raster.Compositor
	opts  Options
	log   *slog.Logger
	tp    TimeProvider
	clock *PausableClock

	events chan terminal.Event
	done   chan struct{}

	hud      bool
	stats    FrameStats
	lastWall time.Time // zero before the first frame
	lastT    float64
}

// New wires a loop; the compositor must already have its layers registered
func New(disp Display, comp *raster.Compositor, opts Options) *Loop {
	tp := opts.Time
	if tp == nil {
		tp = SystemTime{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = NopLogger()
	}
	return &Loop{
		disp:   disp,
		comp:   comp,
		opts:   opts,
		log:    lg,
		tp:     tp,
		clock:  NewPausableClock(tp),
		events: make(chan terminal.Event, 64),
		done:   make(chan struct{}),
		hud:    opts.HUD,
	}
}

// Stats returns a snapshot of the frame statistics
func (l *Loop) Stats() FrameStats {
	return l.stats
}

// Pump forwards display events to the loop until the display closes, the loop
// exits or ctx is cancelled
func (l *Loop) Pump(ctx context.Context) error {
	for {
		ev := l.disp.PollEvent()
		select {
		case l.events <- ev:
		case <-l.done:
			return nil
		case <-ctx.Done():
			return nil
		}
		if ev.Type == terminal.EventClosed {
			return nil
		}
	}
}

// Run renders frames until a quit key, a closed display or ctx cancellation
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		close(l.done)
		// Unblock a Pump parked in PollEvent
		l.disp.PostEvent(terminal.Event{Type: terminal.EventClosed})
	}()

	w, h := l.disp.Size()
	l.resize(w, h)
	pacer := NewPacer(l.opts.FPS, l.tp)
	l.log.Info("loop started", "cols", w, "rows", h, "fps", l.opts.FPS)

	for {
		if quit := l.drainEvents(); quit {
			l.log.Info("loop stopped", "frames", l.stats.Frames)
			return nil
		}

		l.Frame()

		if err := pacer.Wait(ctx); err != nil {
			l.log.Info("loop cancelled", "frames", l.stats.Frames)
			return nil
		}
	}
}

func (l *Loop) drainEvents() bool {
	for {
		select {
		case ev := <-l.events:
			if l.HandleEvent(ev) {
				return true
			}
		default:
			return false
		}
	}
}

// HandleEvent applies one input event and reports whether the loop should quit
func (l *Loop) HandleEvent(ev terminal.Event) bool {
	switch ev.Type {
	case terminal.EventClosed:
		return true
	case terminal.EventError:
		// The reader is gone and raw mode swallows Ctrl-C, nothing could stop the loop
		l.log.Error("input failed, stopping", "err", ev.Err)
		return true
	case terminal.EventResize:
		l.resize(ev.Width, ev.Height)
		return false
	case terminal.EventKey:
	default:
		return false
	}

	switch ev.Key {
	case terminal.KeyEscape, terminal.KeyCtrlC:
		return true
	case terminal.KeyCtrlL:
		l.comp.Invalidate()
	case terminal.KeyRune:
		return l.handleRune(ev.Rune)
	}
	return false
}

func (l *Loop) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		return true
	case ' ':
		paused := l.clock.Toggle()
		l.log.Debug("pause toggled", "paused", paused)
	case 'h', 'H':
		l.hud = !l.hud
	case 'r', 'R':
		l.comp.Invalidate()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		layers := l.comp.Layers()
		i := int(r - '1')
		if i >= len(layers) {
			return false
		}
		on, err := l.comp.Toggle(layers[i].Name)
		if err != nil {
			l.log.Warn("toggle failed", "layer", layers[i].Name, "err", err)
			return false
		}
		l.log.Debug("layer toggled", "layer", layers[i].Name, "enabled", on)
	}
	return false
}

func (l *Loop) resize(w, h int) {
	if err := l.comp.Resize(w, h); err != nil {
		l.log.Warn("resize rejected", "cols", w, "rows", h, "err", err)
		return
	}
	l.log.Debug("resize queued", "cols", w, "rows", h)
}

// Frame composes and writes one frame at the current time
func (l *Loop) Frame() {
	now := l.tp.Now()
	var wallDt float64
	if !l.lastWall.IsZero() {
		wallDt = clampDelta(now.Sub(l.lastWall))
	}
	l.lastWall = now

	t := l.clock.Elapsed()
	dt := wallDt
	if l.clock.IsPaused() {
		dt = 0
	}

	l.updateOverlays()

	segs := l.comp.RenderFrame(t, dt)
	err := l.disp.Write(segs)
	l.comp.Flushed(err)
	if err != nil {
		l.stats.WriteErrs++
		l.log.Warn("frame write failed, forcing full redraw", "err", err)
	}

	l.stats.record(wallDt, l.tp.Now().Sub(now), l.disp.BytesWritten(), len(segs))

	if l.opts.Chime != nil && scene.PulsePeaked(l.lastT, t) {
		l.opts.Chime.Ring()
	}
	l.lastT = t
}

func (l *Loop) updateOverlays() {
	if !l.hud {
		l.comp.SetOverlays()
		return
	}

	layers := l.comp.Layers()
	names := make([]string, 0, len(layers))
	for i, li := range layers {
		mark := "-"
		if li.Enabled {
			mark = "+"
		}
		names = append(names, fmt.Sprintf("%d%s%s", i+1, mark, li.Name))
	}

	ovs := []raster.TextOverlay{
		{X: 1, Y: 0, Text: "tinsel " + l.stats.String(), Color: hudColor},
		{X: 1, Y: 1, Text: strings.Join(names, " "), Color: hudDim},
		{X: 1, Y: -1, Text: helpText(len(layers)), Color: hudDim},
	}
	if l.clock.IsPaused() {
		ovs = append(ovs, raster.TextOverlay{X: -8, Y: 0, Text: "PAUSED", Color: pauseColor})
	}
	l.comp.SetOverlays(ovs...)
}
