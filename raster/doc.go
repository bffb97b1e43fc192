// Package raster composites scene layers into terminal cells.
//
// Layers plot colored fragments into a depth-tested Canvas at sub-cell resolution.
// Rasterize reduces the canvas to one braille glyph per cell with an averaged color,
// and FramePair diffs the result against what the terminal already shows, producing
// the minimal ordered list of terminal segments.
package raster
