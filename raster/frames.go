package raster

import (
	"fmt"

	"github.com/lixenwraith/tinsel/terminal"
)

// FrameState tracks where a FramePair is inside one frame
type FrameState uint8

const (
	StateIdle FrameState = iota
	StateComposing
	StateDiffing
	StateFlushing
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateDiffing:
		return "diffing"
	case StateFlushing:
		return "flushing"
	}
	return fmt.Sprintf("FrameState(%d)", uint8(s))
}

// FramePair holds the grid the terminal currently shows and a scratch grid for the
// next frame, and diffs the two into terminal segments
type FramePair struct {
	prev *Grid // exactly what the terminal shows
	next *Grid // scratch, handed out by BeginFrame

	cols, rows int

	pendingCols, pendingRows int
	resizePending            bool

	fullRedraw bool
	state      FrameState

	// Diff output, reused across frames
	segs  []terminal.Segment
	runes []rune

	// Emitter state during Commit
	active  RGB
	colored bool
	runFrom int
}

// NewFramePair allocates both grids; the first commit is a full redraw
func NewFramePair(cols, rows int) (*FramePair, error) {
	prev, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	next, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	return &FramePair{
		prev:       prev,
		next:       next,
		cols:       cols,
		rows:       rows,
		fullRedraw: true,
		runFrom:    -1,
	}, nil
}

// Resize records new dimensions, applied at the next BeginFrame
func (fp *FramePair) Resize(cols, rows int) error {
	if err := validateDims(cols, rows, maxCells); err != nil {
		return fmt.Errorf("resize %dx%d: %w", cols, rows, err)
	}
	fp.pendingCols, fp.pendingRows = cols, rows
	fp.resizePending = true
	return nil
}

// Size returns the dimensions frames are currently composed at
func (fp *FramePair) Size() (int, int) {
	return fp.cols, fp.rows
}

// State returns the current frame phase
func (fp *FramePair) State() FrameState {
	return fp.state
}

// Invalidate forces the next commit to redraw every cell
// Used when the terminal may no longer match the previous grid
func (fp *FramePair) Invalidate() {
	fp.fullRedraw = true
}

// BeginFrame applies any pending resize and returns the cleared scratch grid
func (fp *FramePair) BeginFrame() *Grid {
	if fp.resizePending {
		fp.resizePending = false
		fp.cols, fp.rows = fp.pendingCols, fp.pendingRows
		// The terminal reflows or clears on resize, nothing on screen can be trusted
		fp.fullRedraw = true
	}

	if fp.next.width != fp.cols || fp.next.height != fp.rows {
		fp.next = &Grid{width: fp.cols, height: fp.rows, cells: make([]Cell, fp.cols*fp.rows)}
	} else {
		fp.next.Clear()
	}

	fp.state = StateComposing
	return fp.next
}

// Commit diffs next against the previous grid and returns the segments that bring
// the terminal from one to the other. Grids swap before returning, so the previous
// grid reflects next whether or not the caller manages to write the segments; on a
// failed write the caller reports it through Flushed.
// The returned slice and its glyph runs are reused by the following Commit.
func (fp *FramePair) Commit(next *Grid) []terminal.Segment {
	fp.state = StateDiffing
	fp.segs = fp.segs[:0]
	fp.runes = fp.runes[:0]
	fp.colored = false
	fp.runFrom = -1

	if n := len(next.cells); cap(fp.runes) < n {
		fp.runes = make([]rune, 0, n)
	}

	full := fp.fullRedraw || next.width != fp.prev.width || next.height != fp.prev.height
	if full {
		fp.diffFull(next)
	} else {
		fp.diffIncremental(next)
	}

	fp.closeRun()
	if fp.colored {
		fp.segs = append(fp.segs, terminal.Segment{Kind: terminal.SegResetColor})
		fp.colored = false
	}

	fp.state = StateFlushing
	if next != fp.prev {
		fp.prev, fp.next = next, fp.prev
	}
	fp.cols, fp.rows = next.width, next.height
	fp.fullRedraw = false

	return fp.segs
}

// Flushed ends the frame; a non-nil error means the terminal may hold a partial
// frame, so the next commit redraws everything
func (fp *FramePair) Flushed(err error) {
	if err != nil {
		fp.fullRedraw = true
	}
	fp.state = StateIdle
}

// diffFull emits every cell row-major after a single move to the origin
// Rows continue through terminal autowrap, so no further moves are needed
func (fp *FramePair) diffFull(next *Grid) {
	fp.moveTo(0, 0)
	for _, c := range next.cells {
		fp.emit(c)
	}
}

// diffIncremental emits only changed cells, one absolute move per run per row
func (fp *FramePair) diffIncremental(next *Grid) {
	w := next.width
	for y := 0; y < next.height; y++ {
		cur := next.cells[y*w : (y+1)*w]
		old := fp.prev.cells[y*w : (y+1)*w]
		inRun := false
		for x, c := range cur {
			if c == old[x] {
				inRun = false
				continue
			}
			if !inRun {
				fp.moveTo(x, y)
				inRun = true
			}
			fp.emit(c)
		}
	}
}

func (fp *FramePair) moveTo(x, y int) {
	fp.closeRun()
	fp.segs = append(fp.segs, terminal.Segment{Kind: terminal.SegCursorMove, X: x, Y: y})
}

// emit appends one cell, switching color only when it differs from the active one
func (fp *FramePair) emit(c Cell) {
	if c.Glyph == 0 {
		if fp.colored {
			fp.closeRun()
			fp.segs = append(fp.segs, terminal.Segment{Kind: terminal.SegResetColor})
			fp.colored = false
		}
		fp.appendRune(' ')
		return
	}

	if !fp.colored || c.Color != fp.active {
		fp.closeRun()
		fp.segs = append(fp.segs, terminal.Segment{Kind: terminal.SegSetColor, Color: c.Color})
		fp.active = c.Color
		fp.colored = true
	}
	fp.appendRune(c.Glyph)
}

func (fp *FramePair) appendRune(r rune) {
	if fp.runFrom < 0 {
		fp.runFrom = len(fp.runes)
	}
	fp.runes = append(fp.runes, r)
}

func (fp *FramePair) closeRun() {
	if fp.runFrom < 0 {
		return
	}
	end := len(fp.runes)
	fp.segs = append(fp.segs, terminal.Segment{
		Kind:   terminal.SegGlyphRun,
		Glyphs: fp.runes[fp.runFrom:end:end],
	})
	fp.runFrom = -1
}
