package raster

import (
	"fmt"

	"github.com/lixenwraith/tinsel/terminal"
)

// Layer is a scene contributor; it may keep its own state but touches the frame
// only through the Plotter
type Layer interface {
	Draw(p Plotter, t, dt float64)
}

// LayerFunc adapts a function to Layer
type LayerFunc func(p Plotter, t, dt float64)

func (f LayerFunc) Draw(p Plotter, t, dt float64) { f(p, t, dt) }

// Priority determines draw order. Lower values draw first
// Translucent particles come after opaque geometry so they can blend over it
type Priority int

const (
	PriorityBackground Priority = iota
	PriorityScene
	PriorityForeground
	PriorityParticles
	PriorityEffects
)

type layerEntry struct {
	name     string
	layer    Layer
	priority Priority
	index    int // registration order for stable sort
	enabled  bool
}

// LayerInfo describes a registered layer
type LayerInfo struct {
	Name     string
	Priority Priority
	Enabled  bool
}

// TextOverlay is a line of text stamped over the rasterized grid
// Negative X or Y count from the right or bottom edge
type TextOverlay struct {
	X, Y  int
	Text  string
	Color RGB
}

// Compositor owns the canvas and frame pair and runs the per-frame pipeline
type Compositor struct {
	canvas   *Canvas
	frames   *FramePair
	layers   []layerEntry
	regCount int
	overlays []TextOverlay
}

// NewCompositor sizes the pipeline for a terminal of cols × rows
func NewCompositor(cols, rows int) (*Compositor, error) {
	frames, err := NewFramePair(cols, rows)
	if err != nil {
		return nil, err
	}
	canvas, err := NewCanvas(cols*SubX, rows*SubY)
	if err != nil {
		return nil, err
	}
	return &Compositor{
		canvas: canvas,
		frames: frames,
		layers: make([]layerEntry, 0, 8),
	}, nil
}

// Register adds an enabled layer at the given priority, insertion-sorted and stable
func (c *Compositor) Register(name string, l Layer, priority Priority) error {
	for _, e := range c.layers {
		if e.name == name {
			return fmt.Errorf("register %q: %w", name, ErrDuplicateLayer)
		}
	}

	entry := layerEntry{
		name:     name,
		layer:    l,
		priority: priority,
		index:    c.regCount,
		enabled:  true,
	}
	c.regCount++

	pos := len(c.layers)
	for i, e := range c.layers {
		if priority < e.priority {
			pos = i
			break
		}
	}

	c.layers = append(c.layers, layerEntry{})
	copy(c.layers[pos+1:], c.layers[pos:])
	c.layers[pos] = entry
	return nil
}

func (c *Compositor) find(name string) (*layerEntry, error) {
	for i := range c.layers {
		if c.layers[i].name == name {
			return &c.layers[i], nil
		}
	}
	return nil, fmt.Errorf("layer %q: %w", name, ErrUnknownLayer)
}

// SetEnabled shows or hides a layer from the next frame on
func (c *Compositor) SetEnabled(name string, enabled bool) error {
	e, err := c.find(name)
	if err != nil {
		return err
	}
	e.enabled = enabled
	return nil
}

// Toggle flips a layer and returns its new state
func (c *Compositor) Toggle(name string) (bool, error) {
	e, err := c.find(name)
	if err != nil {
		return false, err
	}
	e.enabled = !e.enabled
	return e.enabled, nil
}

// Layers lists registered layers in draw order
func (c *Compositor) Layers() []LayerInfo {
	out := make([]LayerInfo, len(c.layers))
	for i, e := range c.layers {
		out[i] = LayerInfo{Name: e.name, Priority: e.priority, Enabled: e.enabled}
	}
	return out
}

// SetOverlays replaces the text stamped over subsequent frames
func (c *Compositor) SetOverlays(ovs ...TextOverlay) {
	c.overlays = append(c.overlays[:0], ovs...)
}

// Resize defers canvas and grid reallocation to the start of the next frame
func (c *Compositor) Resize(cols, rows int) error {
	return c.frames.Resize(cols, rows)
}

// Size returns the terminal dimensions frames are composed at
func (c *Compositor) Size() (int, int) {
	return c.frames.Size()
}

// Invalidate forces a full redraw on the next frame
func (c *Compositor) Invalidate() {
	c.frames.Invalidate()
}

// Flushed reports the outcome of writing the last frame's segments
func (c *Compositor) Flushed(err error) {
	c.frames.Flushed(err)
}

// State exposes the frame pair phase
func (c *Compositor) State() FrameState {
	return c.frames.State()
}

// RenderFrame composes all enabled layers back to front and returns the diff
// segments, valid until the next call
func (c *Compositor) RenderFrame(t, dt float64) []terminal.Segment {
	g := c.frames.BeginFrame()

	// Canvas follows the grid, so a resize lands between frames
	cols, rows := g.Size()
	if w, h := c.canvas.Size(); w != cols*SubX || h != rows*SubY {
		// Grid dimensions were validated against a tighter bound, this cannot fail
		_ = c.canvas.Resize(cols*SubX, rows*SubY)
	} else {
		c.canvas.Clear()
	}

	for i := range c.layers {
		if !c.layers[i].enabled {
			continue
		}
		c.layers[i].layer.Draw(c.canvas, t, dt)
	}

	Rasterize(c.canvas, g)

	for _, ov := range c.overlays {
		x, y := ov.X, ov.Y
		if x < 0 {
			x += cols
		}
		if y < 0 {
			y += rows
		}
		g.SetText(x, y, ov.Text, ov.Color)
	}

	return c.frames.Commit(g)
}
