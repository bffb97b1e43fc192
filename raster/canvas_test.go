package raster

import (
	"errors"
	"math"
	"testing"
)

func mustCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c, err := NewCanvas(w, h)
	if err != nil {
		t.Fatalf("NewCanvas(%d, %d): %v", w, h, err)
	}
	return c
}

func TestCanvasDepthTest(t *testing.T) {
	red := RGB{R: 255, G: 0, B: 0}
	green := RGB{R: 0, G: 255, B: 0}
	blue := RGB{R: 0, G: 0, B: 255}

	type plot struct {
		c RGB
		d float64
	}
	tests := []struct {
		name  string
		plots []plot
		want  RGB
	}{
		{"Single plot", []plot{{red, 1}}, red},
		{"Nearer wins", []plot{{red, 1}, {green, 2}}, green},
		{"Farther rejected", []plot{{green, 2}, {red, 1}}, green},
		{"Tie keeps first writer", []plot{{red, 1}, {green, 1}, {blue, 1}}, red},
		{"Greatest of many", []plot{{red, -5}, {blue, 3}, {green, 0}, {red, 2.999}}, blue},
		{"NaN ignored", []plot{{red, 0}, {green, math.NaN()}}, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCanvas(t, 4, 4)
			for _, p := range tt.plots {
				c.Plot(1, 2, p.c, p.d)
			}
			px, ok := c.At(1, 2)
			if !ok {
				t.Fatal("pixel empty after plots")
			}
			if px.Color != tt.want {
				t.Errorf("color = %v, want %v", px.Color, tt.want)
			}
		})
	}
}

func TestCanvasBoundsClipping(t *testing.T) {
	c := mustCanvas(t, 3, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {math.MaxInt, 0}, {math.MinInt, 1}} {
		c.Plot(p[0], p[1], RGB{R: 1, G: 1, B: 1}, 0)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if _, ok := c.At(x, y); ok {
				t.Errorf("pixel (%d,%d) drawn by out-of-bounds plot", x, y)
			}
		}
	}
	if _, ok := c.At(5, 5); ok {
		t.Error("At out of bounds reported ok")
	}
}

func TestCanvasClear(t *testing.T) {
	c := mustCanvas(t, 7, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			c.Plot(x, y, RGB{R: 9, G: 9, B: 9}, float64(x))
		}
	}
	c.Clear()
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			px, ok := c.At(x, y)
			if ok || px.Depth != EmptyDepth {
				t.Fatalf("pixel (%d,%d) not cleared: %+v", x, y, px)
			}
		}
	}
	// Any finite depth beats the sentinel
	c.Plot(0, 0, RGB{R: 1, G: 2, B: 3}, -1e300)
	if _, ok := c.At(0, 0); !ok {
		t.Error("very negative depth rejected on cleared pixel")
	}
}

func TestCanvasResize(t *testing.T) {
	c := mustCanvas(t, 4, 4)
	c.Plot(0, 0, RGB{R: 1, G: 1, B: 1}, 0)

	tests := []struct {
		name string
		w, h int
	}{
		{"Zero width", 0, 4},
		{"Negative height", 4, -1},
		{"Oversized", 1 << 20, 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Resize(tt.w, tt.h)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("err = %v, want ErrInvalidDimensions", err)
			}
			if w, h := c.Size(); w != 4 || h != 4 {
				t.Errorf("size changed to %dx%d", w, h)
			}
			if _, ok := c.At(0, 0); !ok {
				t.Error("previous buffer contents lost")
			}
		})
	}

	if err := c.Resize(10, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := c.Size(); w != 10 || h != 3 {
		t.Errorf("size = %dx%d, want 10x3", w, h)
	}
	if _, ok := c.At(0, 0); ok {
		t.Error("resize did not clear")
	}
}

func TestBlendPlot(t *testing.T) {
	t.Run("Onto empty pixel blends over black", func(t *testing.T) {
		c := mustCanvas(t, 2, 2)
		BlendPlot(c, 0, 0, RGB{R: 200, G: 100, B: 50}, BlendAdd, 0.5, 1)
		px, ok := c.At(0, 0)
		if !ok || px.Color != (RGB{R: 100, G: 50, B: 25}) || px.Depth != 1 {
			t.Errorf("got %+v ok=%v", px, ok)
		}
	})

	t.Run("Accumulates at same depth", func(t *testing.T) {
		c := mustCanvas(t, 2, 2)
		c.Plot(0, 0, RGB{R: 10, G: 10, B: 10}, 5)
		BlendPlot(c, 0, 0, RGB{R: 20, G: 20, B: 20}, BlendAdd, 1, 5)
		BlendPlot(c, 0, 0, RGB{R: 20, G: 20, B: 20}, BlendAdd, 1, 5)
		px, _ := c.At(0, 0)
		if px.Color != (RGB{R: 50, G: 50, B: 50}) {
			t.Errorf("color = %v, want {50 50 50}", px.Color)
		}
		if !(px.Depth > 5) {
			t.Errorf("depth %v did not advance past 5", px.Depth)
		}
	})

	t.Run("Wins against nearer pixel", func(t *testing.T) {
		c := mustCanvas(t, 2, 2)
		c.Plot(0, 0, RGB{R: 10, G: 10, B: 10}, 5)
		BlendPlot(c, 0, 0, RGB{R: 110, G: 10, B: 10}, BlendAlpha, 0.5, 4)
		px, _ := c.At(0, 0)
		if px.Color != (RGB{R: 60, G: 10, B: 10}) || !(px.Depth > 5) {
			t.Errorf("got %+v", px)
		}
	})

	t.Run("Alpha over nearer fragment", func(t *testing.T) {
		c := mustCanvas(t, 2, 2)
		c.Plot(0, 0, RGB{R: 0, G: 0, B: 0}, 1)
		BlendPlot(c, 0, 0, RGB{R: 200, G: 100, B: 0}, BlendAlpha, 0.5, 3)
		px, _ := c.At(0, 0)
		if px.Color != (RGB{R: 100, G: 50, B: 0}) || px.Depth != 3 {
			t.Errorf("got %+v", px)
		}
	})
}

func TestGlowPlot(t *testing.T) {
	c := mustCanvas(t, 3, 1)
	c.Plot(1, 0, RGB{R: 100, G: 100, B: 100}, 2)

	GlowPlot(c, 0, 0, RGB{R: 255, G: 0, B: 0}, BlendAdd, 1)
	if _, ok := c.At(0, 0); ok {
		t.Error("glow lit an empty pixel")
	}

	GlowPlot(c, 1, 0, RGB{R: 100, G: 0, B: 0}, BlendAdd, 0.5)
	GlowPlot(c, 1, 0, RGB{R: 100, G: 0, B: 0}, BlendAdd, 0.5)
	px, _ := c.At(1, 0)
	if px.Color != (RGB{R: 200, G: 100, B: 100}) {
		t.Errorf("color = %v, want {200 100 100}", px.Color)
	}

	GlowPlot(c, 1, 0, RGB{R: 0, G: 0, B: 0}, BlendAlpha, 0.5)
	px, _ = c.At(1, 0)
	if px.Color != (RGB{R: 100, G: 50, B: 50}) {
		t.Errorf("alpha glow color = %v, want {100 50 50}", px.Color)
	}
}

func TestPlotF(t *testing.T) {
	c := mustCanvas(t, 4, 4)
	PlotF(c, 2.9, 1.1, RGB{R: 1, G: 2, B: 3}, 0)
	PlotF(c, -0.5, 0, RGB{R: 1, G: 2, B: 3}, 0)
	PlotF(c, math.NaN(), 0, RGB{R: 1, G: 2, B: 3}, 0)
	if _, ok := c.At(2, 1); !ok {
		t.Error("PlotF(2.9, 1.1) should floor to (2, 1)")
	}
	if _, ok := c.At(0, 0); ok {
		t.Error("PlotF(-0.5, 0) should floor off-canvas")
	}
}
