package raster

import (
	"fmt"
	"math"
)

// Sub-pixel factor: one terminal cell covers SubX × SubY canvas pixels
const (
	SubX = 2
	SubY = 4
)

// maxPixels bounds a single allocation, well above any real terminal
const maxPixels = 1 << 24

// EmptyDepth marks a pixel nothing has been drawn to, lower than any layer depth
const EmptyDepth = -math.MaxFloat64

// Pixel is one canvas sample; greater Depth is nearer the viewer
type Pixel struct {
	Color RGB
	Depth float64
}

// Empty reports whether nothing was drawn to the pixel this frame
func (p Pixel) Empty() bool {
	return !(p.Depth > EmptyDepth)
}

var emptyPixel = Pixel{Depth: EmptyDepth}

// Plotter is the only capability scene layers receive
type Plotter interface {
	// Plot writes the fragment if depth is strictly greater than the stored depth
	Plot(x, y int, c RGB, depth float64)

	// At returns the pixel and whether it is in bounds and drawn
	At(x, y int) (Pixel, bool)

	// Size returns the canvas size in pixels
	Size() (width, height int)
}

// Canvas is a flat row-major depth-tested pixel buffer
type Canvas struct {
	width  int
	height int
	pix    []Pixel
}

// NewCanvas allocates a cleared canvas
func NewCanvas(width, height int) (*Canvas, error) {
	c := &Canvas{}
	if err := c.Resize(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize reallocates and clears the canvas
// Invalid dimensions are rejected and the previous buffer is retained
func (c *Canvas) Resize(width, height int) error {
	if err := validateDims(width, height, maxPixels); err != nil {
		return fmt.Errorf("canvas %dx%d: %w", width, height, err)
	}

	n := width * height
	if cap(c.pix) >= n {
		c.pix = c.pix[:n]
	} else {
		c.pix = make([]Pixel, n)
	}
	c.width = width
	c.height = height
	c.Clear()
	return nil
}

func validateDims(width, height, limit int) error {
	if width <= 0 || height <= 0 || width > limit/height {
		return ErrInvalidDimensions
	}
	return nil
}

// Clear resets every pixel to empty
func (c *Canvas) Clear() {
	if len(c.pix) == 0 {
		return
	}
	// Copy-doubling fill
	c.pix[0] = emptyPixel
	for filled := 1; filled < len(c.pix); filled *= 2 {
		copy(c.pix[filled:], c.pix[:filled])
	}
}

// Plot writes only when depth is strictly nearer than the stored pixel
// Out-of-bounds coordinates and NaN depths are dropped silently
func (c *Canvas) Plot(x, y int, col RGB, depth float64) {
	if uint(x) >= uint(c.width) || uint(y) >= uint(c.height) {
		return
	}
	p := &c.pix[y*c.width+x]
	if depth > p.Depth {
		p.Color = col
		p.Depth = depth
	}
}

// At returns the pixel at (x, y), ok is false when out of bounds or empty
func (c *Canvas) At(x, y int) (Pixel, bool) {
	if uint(x) >= uint(c.width) || uint(y) >= uint(c.height) {
		return emptyPixel, false
	}
	p := c.pix[y*c.width+x]
	return p, !p.Empty()
}

// Size returns the canvas size in pixels
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// PlotF plots at the pixel containing the continuous coordinate (x, y)
func PlotF(p Plotter, x, y float64, c RGB, depth float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	p.Plot(int(math.Floor(x)), int(math.Floor(y)), c, depth)
}

// BlendPlot composites c onto the pixel at (x, y)
// An empty pixel receives c blended over black at depth. A drawn pixel is read back
// and the blend is written at a depth that beats the stored one, so repeated blends
// accumulate instead of losing the depth test to themselves
func BlendPlot(p Plotter, x, y int, c RGB, mode BlendMode, alpha, depth float64) {
	cur, ok := p.At(x, y)
	if !ok {
		p.Plot(x, y, Apply(mode, RGBBlack, c, alpha), depth)
		return
	}
	p.Plot(x, y, Apply(mode, cur.Color, c, alpha), beat(cur.Depth, depth))
}

// GlowPlot blends c onto an already drawn pixel at intensity, ignoring depth
// Empty pixels stay empty so halos only light existing geometry
func GlowPlot(p Plotter, x, y int, c RGB, mode BlendMode, intensity float64) {
	cur, ok := p.At(x, y)
	if !ok || intensity <= 0 {
		return
	}
	p.Plot(x, y, Apply(mode, cur.Color, c, intensity), math.Nextafter(cur.Depth, math.Inf(1)))
}

// beat returns a depth strictly greater than stored, preferring want when it already is
func beat(stored, want float64) float64 {
	if want > stored {
		return want
	}
	return math.Nextafter(stored, math.Inf(1))
}
