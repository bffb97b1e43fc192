package terminal

import (
	"bufio"
	"fmt"
	"io"
	"sync/atomic"
)

// SegmentKind tags one unit of diff output
type SegmentKind uint8

const (
	SegCursorMove SegmentKind = iota // absolute move to X, Y
	SegSetColor                      // foreground switch to Color
	SegGlyphRun                      // Glyphs written left to right from the cursor
	SegResetColor                    // back to the terminal default color
)

// Segment is one opaque write unit produced by the diff engine
// Glyphs may alias a buffer owned by the producer, valid until its next frame
type Segment struct {
	Kind   SegmentKind
	X, Y   int
	Color  RGB
	Glyphs []rune
}

func (s Segment) String() string {
	switch s.Kind {
	case SegCursorMove:
		return fmt.Sprintf("move(%d,%d)", s.X, s.Y)
	case SegSetColor:
		return fmt.Sprintf("color(%d,%d,%d)", s.Color.R, s.Color.G, s.Color.B)
	case SegGlyphRun:
		return fmt.Sprintf("run(%q)", string(s.Glyphs))
	case SegResetColor:
		return "reset"
	}
	return "unknown"
}

// EncodeSegments serializes segments as ANSI sequences into w without flushing
func EncodeSegments(w *bufio.Writer, segs []Segment, mode ColorMode) {
	for i := range segs {
		s := &segs[i]
		switch s.Kind {
		case SegCursorMove:
			writeCursorPos(w, s.X, s.Y)
		case SegSetColor:
			writeFg(w, s.Color, mode)
		case SegGlyphRun:
			for _, r := range s.Glyphs {
				if r == 0 {
					r = ' '
				}
				w.WriteRune(r)
			}
		case SegResetColor:
			w.Write(csiSGR0)
		}
	}
}

// countingWriter tracks bytes accepted by the underlying writer
type countingWriter struct {
	w io.Writer
	n atomic.Uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(uint64(n))
	return n, err
}

// StreamWriter is a segment sink over any io.Writer
type StreamWriter struct {
	cw   *countingWriter
	w    *bufio.Writer
	mode ColorMode
}

// outputBufferSize holds a full truecolor redraw of a large terminal in one flush
const outputBufferSize = 128 * 1024

// NewStreamWriter wraps w, encoding colors in the given mode
func NewStreamWriter(w io.Writer, mode ColorMode) *StreamWriter {
	cw := &countingWriter{w: w}
	return &StreamWriter{
		cw:   cw,
		w:    bufio.NewWriterSize(cw, outputBufferSize),
		mode: mode,
	}
}

// Write encodes and flushes one frame of segments
// On error the buffered remainder is discarded so the next frame starts clean
func (s *StreamWriter) Write(segs []Segment) error {
	if len(segs) == 0 {
		return nil
	}
	EncodeSegments(s.w, segs, s.mode)
	if err := s.w.Flush(); err != nil {
		s.w.Reset(s.cw)
		return fmt.Errorf("flush segments: %w", err)
	}
	return nil
}

// WriteRaw writes control bytes outside the segment stream and flushes
func (s *StreamWriter) WriteRaw(p []byte) error {
	s.w.Write(p)
	if err := s.w.Flush(); err != nil {
		s.w.Reset(s.cw)
		return err
	}
	return nil
}

// ColorMode returns the encoding mode
func (s *StreamWriter) ColorMode() ColorMode {
	return s.mode
}

// BytesWritten returns the total bytes delivered to the underlying writer
func (s *StreamWriter) BytesWritten() uint64 {
	return s.cw.n.Load()
}
