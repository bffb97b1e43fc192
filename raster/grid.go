package raster

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// maxCells bounds a grid allocation
const maxCells = maxPixels / (SubX * SubY)

// Cell is one terminal character; Glyph 0 is blank and always carries a zero Color
type Cell struct {
	Glyph rune
	Color RGB
}

// Blank reports whether the cell renders as a space in the default color
func (c Cell) Blank() bool {
	return c.Glyph == 0
}

// Grid is a row-major cell buffer sized in terminal columns and rows
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid allocates a blank grid
func NewGrid(cols, rows int) (*Grid, error) {
	if err := validateDims(cols, rows, maxCells); err != nil {
		return nil, fmt.Errorf("grid %dx%d: %w", cols, rows, err)
	}
	return &Grid{width: cols, height: rows, cells: make([]Cell, cols*rows)}, nil
}

// Size returns columns and rows
func (g *Grid) Size() (int, int) {
	return g.width, g.height
}

// Clear blanks every cell
func (g *Grid) Clear() {
	clear(g.cells)
}

// At returns the cell, zero when out of bounds
func (g *Grid) At(x, y int) Cell {
	if uint(x) >= uint(g.width) || uint(y) >= uint(g.height) {
		return Cell{}
	}
	return g.cells[y*g.width+x]
}

// Set writes a cell, ignoring out-of-bounds positions
// A blank glyph has its color dropped so equal-looking cells compare equal
func (g *Grid) Set(x, y int, c Cell) {
	if uint(x) >= uint(g.width) || uint(y) >= uint(g.height) {
		return
	}
	if c.Glyph == 0 {
		c.Color = RGB{}
	}
	g.cells[y*g.width+x] = c
}

// Row returns the cells of row y, aliasing the grid
func (g *Grid) Row(y int) []Cell {
	return g.cells[y*g.width : (y+1)*g.width]
}

// SetText writes text from (x, y), clipped at the right edge
// Runes that do not occupy exactly one column are replaced to keep cell alignment
func (g *Grid) SetText(x, y int, text string, color RGB) {
	if y < 0 || y >= g.height || x >= g.width {
		return
	}
	for _, r := range runewidth.Truncate(text, g.width-x, "") {
		if x >= 0 {
			if r == ' ' {
				g.Set(x, y, Cell{})
			} else {
				if runewidth.RuneWidth(r) != 1 {
					r = '?'
				}
				g.Set(x, y, Cell{Glyph: r, Color: color})
			}
		}
		x++
	}
}
