package raster

import (
	"errors"
	"testing"

	"github.com/lixenwraith/tinsel/terminal"
)

func mustFrames(t *testing.T, cols, rows int) *FramePair {
	t.Helper()
	fp, err := NewFramePair(cols, rows)
	if err != nil {
		t.Fatalf("NewFramePair(%d, %d): %v", cols, rows, err)
	}
	return fp
}

func countKind(segs []terminal.Segment, kind terminal.SegmentKind) int {
	n := 0
	for _, s := range segs {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func glyphCount(segs []terminal.Segment) int {
	n := 0
	for _, s := range segs {
		if s.Kind == terminal.SegGlyphRun {
			n += len(s.Glyphs)
		}
	}
	return n
}

// settle commits a frame built by fill and returns the frame pair ready for the next
func settle(t *testing.T, fp *FramePair, fill func(g *Grid)) []terminal.Segment {
	t.Helper()
	g := fp.BeginFrame()
	if fill != nil {
		fill(g)
	}
	segs := fp.Commit(g)
	fp.Flushed(nil)
	return segs
}

var (
	colA = RGB{R: 200, G: 10, B: 10}
	colB = RGB{R: 10, G: 200, B: 10}
)

func TestFullRedrawFirstFrame(t *testing.T) {
	fp := mustFrames(t, 4, 3)
	segs := settle(t, fp, func(g *Grid) {
		g.Set(1, 0, Cell{Glyph: 0x2801, Color: colA})
		g.Set(2, 0, Cell{Glyph: 0x2802, Color: colA})
		g.Set(0, 2, Cell{Glyph: 0x2803, Color: colB})
	})

	if n := countKind(segs, terminal.SegCursorMove); n != 1 {
		t.Fatalf("cursor moves = %d, want 1", n)
	}
	if segs[0].Kind != terminal.SegCursorMove || segs[0].X != 0 || segs[0].Y != 0 {
		t.Errorf("first segment = %v, want move(0,0)", segs[0])
	}
	if n := glyphCount(segs); n != 12 {
		t.Errorf("glyphs emitted = %d, want every cell (12)", n)
	}

	want := []string{
		"move(0,0)",
		`run(" ")`,
		"color(200,10,10)",
		`run("⠁⠂")`,
		"reset",
		`run("     ")`,
		"color(10,200,10)",
		`run("⠃")`,
		"reset",
		`run("   ")`,
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments %v, want %v", len(segs), segs, want)
	}
	for i := range want {
		if segs[i].String() != want[i] {
			t.Errorf("segment %d = %v, want %s", i, segs[i], want[i])
		}
	}
}

func TestRoundTripIdempotence(t *testing.T) {
	fill := func(g *Grid) {
		for x := 0; x < 6; x++ {
			g.Set(x, 1, Cell{Glyph: BrailleBase | rune(x+1), Color: colA})
		}
	}

	t.Run("Same content through BeginFrame", func(t *testing.T) {
		fp := mustFrames(t, 6, 3)
		settle(t, fp, fill)
		if segs := settle(t, fp, fill); len(segs) != 0 {
			t.Errorf("second commit emitted %v", segs)
		}
	})

	t.Run("Same grid committed twice", func(t *testing.T) {
		fp := mustFrames(t, 6, 3)
		g := fp.BeginFrame()
		fill(g)
		fp.Commit(g)
		if segs := fp.Commit(g); len(segs) != 0 {
			t.Errorf("second commit emitted %v", segs)
		}
	})
}

func TestDiffMinimality(t *testing.T) {
	base := func(g *Grid) {
		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				g.Set(x, y, Cell{Glyph: 0x28FF, Color: colA})
			}
		}
	}

	tests := []struct {
		name       string
		change     Cell
		wantColors int
	}{
		{"Glyph changed", Cell{Glyph: 0x2801, Color: colA}, 1},
		{"Color changed", Cell{Glyph: 0x28FF, Color: colB}, 1},
		{"Cell cleared", Cell{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := mustFrames(t, 8, 4)
			settle(t, fp, base)
			segs := settle(t, fp, func(g *Grid) {
				base(g)
				g.Set(5, 2, tt.change)
			})

			if n := countKind(segs, terminal.SegCursorMove); n != 1 {
				t.Errorf("cursor moves = %d, want 1", n)
			}
			if segs[0].X != 5 || segs[0].Y != 2 {
				t.Errorf("move to (%d,%d), want (5,2)", segs[0].X, segs[0].Y)
			}
			if n := countKind(segs, terminal.SegGlyphRun); n != 1 {
				t.Errorf("glyph runs = %d, want 1", n)
			}
			if n := glyphCount(segs); n != 1 {
				t.Errorf("glyphs = %d, want 1", n)
			}
			if n := countKind(segs, terminal.SegSetColor); n != tt.wantColors {
				t.Errorf("color escapes = %d, want %d", n, tt.wantColors)
			}
		})
	}
}

func TestColorRunCoalescing(t *testing.T) {
	fp := mustFrames(t, 20, 2)
	settle(t, fp, nil)

	segs := settle(t, fp, func(g *Grid) {
		for x := 5; x <= 10; x++ {
			g.Set(x, 0, Cell{Glyph: 0x2800 | rune(x), Color: colA})
		}
		for x := 11; x <= 14; x++ {
			g.Set(x, 0, Cell{Glyph: 0x2800 | rune(x), Color: colB})
		}
	})

	if n := countKind(segs, terminal.SegSetColor); n != 2 {
		t.Errorf("color escapes = %d, want 2: %v", n, segs)
	}
	if n := countKind(segs, terminal.SegCursorMove); n != 1 {
		t.Errorf("cursor moves = %d, want 1: %v", n, segs)
	}
	if n := glyphCount(segs); n != 10 {
		t.Errorf("glyphs = %d, want 10", n)
	}
	if last := segs[len(segs)-1]; last.Kind != terminal.SegResetColor {
		t.Errorf("last segment = %v, want reset", last)
	}
}

func TestIncrementalRunsPerRow(t *testing.T) {
	fp := mustFrames(t, 10, 3)
	settle(t, fp, nil)

	segs := settle(t, fp, func(g *Grid) {
		g.Set(1, 0, Cell{Glyph: 0x2801, Color: colA})
		g.Set(2, 0, Cell{Glyph: 0x2801, Color: colA})
		g.Set(6, 0, Cell{Glyph: 0x2801, Color: colA})
		g.Set(9, 0, Cell{Glyph: 0x2801, Color: colA})
		g.Set(0, 1, Cell{Glyph: 0x2801, Color: colA})
	})

	var moves [][2]int
	for _, s := range segs {
		if s.Kind == terminal.SegCursorMove {
			moves = append(moves, [2]int{s.X, s.Y})
		}
	}
	want := [][2]int{{1, 0}, {6, 0}, {9, 0}, {0, 1}}
	if len(moves) != len(want) {
		t.Fatalf("moves = %v, want %v", moves, want)
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("move %d = %v, want %v", i, moves[i], want[i])
		}
	}
	// One color, never re-emitted while it stays active
	if n := countKind(segs, terminal.SegSetColor); n != 1 {
		t.Errorf("color escapes = %d, want 1", n)
	}
}

func TestFullRedrawOnResize(t *testing.T) {
	fill := func(g *Grid) {
		g.Set(0, 0, Cell{Glyph: 0x2801, Color: colA})
	}

	fp := mustFrames(t, 5, 2)
	settle(t, fp, fill)

	t.Run("Deferred until BeginFrame", func(t *testing.T) {
		if err := fp.Resize(7, 3); err != nil {
			t.Fatalf("Resize: %v", err)
		}
		if c, r := fp.Size(); c != 5 || r != 2 {
			t.Errorf("size changed before BeginFrame: %dx%d", c, r)
		}
	})

	segs := settle(t, fp, fill)
	if n := glyphCount(segs); n != 21 {
		t.Errorf("glyphs after resize = %d, want 21", n)
	}
	if n := countKind(segs, terminal.SegCursorMove); n != 1 {
		t.Errorf("cursor moves = %d, want 1", n)
	}

	t.Run("Same dimensions still redraw", func(t *testing.T) {
		if err := fp.Resize(7, 3); err != nil {
			t.Fatalf("Resize: %v", err)
		}
		segs := settle(t, fp, fill)
		if n := glyphCount(segs); n != 21 {
			t.Errorf("glyphs = %d, want 21 even for identical content", n)
		}
	})

	t.Run("Steady state afterwards", func(t *testing.T) {
		if segs := settle(t, fp, fill); len(segs) != 0 {
			t.Errorf("unexpected segments %v", segs)
		}
	})
}

func TestResizeInvalid(t *testing.T) {
	fp := mustFrames(t, 5, 2)
	if err := fp.Resize(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
	g := fp.BeginFrame()
	if c, r := g.Size(); c != 5 || r != 2 {
		t.Errorf("invalid resize applied: %dx%d", c, r)
	}
}

func TestDimensionMismatchForcesFullRedraw(t *testing.T) {
	fp := mustFrames(t, 4, 2)
	settle(t, fp, nil)

	other := mustGrid(t, 3, 3)
	segs := fp.Commit(other)
	fp.Flushed(nil)
	if n := glyphCount(segs); n != 9 {
		t.Errorf("glyphs = %d, want 9", n)
	}

	g := fp.BeginFrame()
	if c, r := g.Size(); c != 3 || r != 3 {
		t.Errorf("scratch grid %dx%d, want 3x3", c, r)
	}
}

func TestInvalidateAndFlushFailure(t *testing.T) {
	fp := mustFrames(t, 3, 2)
	settle(t, fp, nil)

	g := fp.BeginFrame()
	g.Set(1, 1, Cell{Glyph: 0x2801, Color: colA})
	fp.Commit(g)
	if fp.State() != StateFlushing {
		t.Errorf("state = %v, want flushing", fp.State())
	}
	fp.Flushed(errors.New("broken pipe"))
	if fp.State() != StateIdle {
		t.Errorf("state = %v, want idle", fp.State())
	}

	// Same content, but the terminal may not have it
	segs := settle(t, fp, func(g *Grid) {
		g.Set(1, 1, Cell{Glyph: 0x2801, Color: colA})
	})
	if n := glyphCount(segs); n != 6 {
		t.Errorf("glyphs after failed flush = %d, want 6", n)
	}

	fp.Invalidate()
	if segs := settle(t, fp, nil); glyphCount(segs) != 6 {
		t.Errorf("Invalidate did not force a full redraw")
	}
}

func TestFrameStates(t *testing.T) {
	fp := mustFrames(t, 2, 2)
	if fp.State() != StateIdle {
		t.Fatalf("initial state %v", fp.State())
	}
	g := fp.BeginFrame()
	if fp.State() != StateComposing {
		t.Errorf("after BeginFrame: %v", fp.State())
	}
	fp.Commit(g)
	if fp.State() != StateFlushing {
		t.Errorf("after Commit: %v", fp.State())
	}
	fp.Flushed(nil)
	if fp.State() != StateIdle {
		t.Errorf("after Flushed: %v", fp.State())
	}
}

func TestBuffersSwapAndReuse(t *testing.T) {
	fp := mustFrames(t, 3, 1)
	g1 := fp.BeginFrame()
	fp.Commit(g1)
	g2 := fp.BeginFrame()
	if g1 == g2 {
		t.Fatal("scratch grid is the committed grid")
	}
	fp.Commit(g2)
	if g3 := fp.BeginFrame(); g3 != g1 {
		t.Error("old previous grid was not reused as scratch")
	}
}
