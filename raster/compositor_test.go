package raster

import (
	"errors"
	"testing"

	"github.com/lixenwraith/tinsel/terminal"
)

type recordLayer struct {
	name  string
	order *[]string
	plot  func(p Plotter)
}

func (l *recordLayer) Draw(p Plotter, t, dt float64) {
	*l.order = append(*l.order, l.name)
	if l.plot != nil {
		l.plot(p)
	}
}

func mustCompositor(t *testing.T, cols, rows int) *Compositor {
	t.Helper()
	c, err := NewCompositor(cols, rows)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	return c
}

func TestCompositorDrawOrder(t *testing.T) {
	c := mustCompositor(t, 4, 2)
	var order []string

	reg := []struct {
		name string
		prio Priority
	}{
		{"tree", PriorityScene},
		{"stars", PriorityBackground},
		{"lights", PriorityScene},
		{"snow", PriorityParticles},
		{"hud", PriorityEffects},
	}
	for _, r := range reg {
		if err := c.Register(r.name, &recordLayer{name: r.name, order: &order}, r.prio); err != nil {
			t.Fatalf("Register(%s): %v", r.name, err)
		}
	}

	c.RenderFrame(0, 0)
	want := []string{"stars", "tree", "lights", "snow", "hud"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}

	infos := c.Layers()
	if infos[0].Name != "stars" || !infos[0].Enabled {
		t.Errorf("Layers()[0] = %+v", infos[0])
	}
}

func TestCompositorRegisterDuplicate(t *testing.T) {
	c := mustCompositor(t, 2, 2)
	l := LayerFunc(func(Plotter, float64, float64) {})
	if err := c.Register("a", l, PriorityScene); err != nil {
		t.Fatal(err)
	}
	if err := c.Register("a", l, PriorityScene); !errors.Is(err, ErrDuplicateLayer) {
		t.Errorf("err = %v, want ErrDuplicateLayer", err)
	}
}

func TestCompositorToggleLeavesNoStalePixels(t *testing.T) {
	c := mustCompositor(t, 2, 1)
	dot := LayerFunc(func(p Plotter, t, dt float64) {
		p.Plot(0, 0, RGB{R: 255, G: 255, B: 255}, 0)
	})
	if err := c.Register("dot", dot, PriorityScene); err != nil {
		t.Fatal(err)
	}

	first := c.RenderFrame(0, 0)
	c.Flushed(nil)
	if glyphCount(first) != 2 {
		t.Fatalf("first frame glyphs = %d", glyphCount(first))
	}

	on, err := c.Toggle("dot")
	if err != nil || on {
		t.Fatalf("Toggle = %v, %v", on, err)
	}
	segs := c.RenderFrame(0.1, 0.1)
	c.Flushed(nil)

	// The dot cell goes blank: one move, one space
	if len(segs) != 2 || segs[0].Kind != terminal.SegCursorMove ||
		segs[1].Kind != terminal.SegGlyphRun || string(segs[1].Glyphs) != " " {
		t.Errorf("segments after disable = %v", segs)
	}

	if _, err := c.Toggle("missing"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("err = %v, want ErrUnknownLayer", err)
	}
	if err := c.SetEnabled("missing", true); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("err = %v, want ErrUnknownLayer", err)
	}
}

func TestCompositorFirstWriterWinsAcrossLayers(t *testing.T) {
	c := mustCompositor(t, 1, 1)
	red := RGB{R: 255, G: 0, B: 0}
	green := RGB{R: 0, G: 255, B: 0}
	c.Register("body", LayerFunc(func(p Plotter, t, dt float64) {
		p.Plot(0, 0, red, 1)
	}), PriorityScene)
	c.Register("ornament", LayerFunc(func(p Plotter, t, dt float64) {
		p.Plot(0, 0, green, 1)
	}), PriorityForeground)

	segs := c.RenderFrame(0, 0)
	found := false
	for _, s := range segs {
		if s.Kind == terminal.SegSetColor {
			found = true
			if s.Color != red {
				t.Errorf("color = %v, want first writer red", s.Color)
			}
		}
	}
	if !found {
		t.Error("no color emitted")
	}
}

func TestCompositorResizeBetweenFrames(t *testing.T) {
	c := mustCompositor(t, 4, 2)
	var sizes [][2]int
	c.Register("probe", LayerFunc(func(p Plotter, t, dt float64) {
		w, h := p.Size()
		sizes = append(sizes, [2]int{w, h})
	}), PriorityScene)

	c.RenderFrame(0, 0)
	c.Flushed(nil)
	if err := c.Resize(6, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := c.Resize(-1, 3); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
	segs := c.RenderFrame(0.1, 0.1)

	if sizes[0] != [2]int{8, 8} || sizes[1] != [2]int{12, 12} {
		t.Errorf("canvas sizes = %v, want [8 8] then [12 12]", sizes)
	}
	if glyphCount(segs) != 18 {
		t.Errorf("glyphs after resize = %d, want 18", glyphCount(segs))
	}
}

func TestCompositorOverlays(t *testing.T) {
	c := mustCompositor(t, 10, 3)
	white := RGB{R: 255, G: 255, B: 255}
	c.SetOverlays(
		TextOverlay{X: 0, Y: 0, Text: "fps", Color: white},
		TextOverlay{X: -2, Y: -1, Text: "ok", Color: white},
	)
	c.RenderFrame(0, 0)
	c.Flushed(nil)

	g := c.frames.prev
	if got := string([]rune{g.At(0, 0).Glyph, g.At(1, 0).Glyph, g.At(2, 0).Glyph}); got != "fps" {
		t.Errorf("top-left = %q", got)
	}
	if got := string([]rune{g.At(8, 2).Glyph, g.At(9, 2).Glyph}); got != "ok" {
		t.Errorf("bottom-right = %q", got)
	}
}
