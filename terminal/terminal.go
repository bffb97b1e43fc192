package terminal

import (
	"io"
	"os"
	"sync"
)

// Terminal provides low-level terminal access for a segment-driven renderer
type Terminal interface {
	// Init enters raw mode, alternate screen buffer, hides cursor
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// ResizeChan returns channel that receives resize events, only the latest size is kept
	ResizeChan() <-chan ResizeEvent

	// ColorMode returns the color capability used for encoding
	ColorMode() ColorMode

	// Write encodes and flushes one frame of diff segments
	Write(segs []Segment) error

	// BytesWritten returns total bytes delivered to the terminal
	BytesWritten() uint64

	// PollEvent blocks until next input event
	PollEvent() Event

	// PostEvent injects a synthetic event
	PostEvent(Event)
}

// ResizeEvent represents a terminal resize
type ResizeEvent struct {
	Width  int
	Height int
}

// termImpl implements Terminal using the Backend interface
type termImpl struct {
	backend Backend

	output      *StreamWriter
	input       *inputReader
	resizeCh    chan ResizeEvent
	syntheticCh chan Event

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates a new Terminal instance, detecting color mode when none is given
func New(colorMode ...ColorMode) Terminal {
	return newTerminal(newBackend(), colorMode...)
}

func newTerminal(b Backend, colorMode ...ColorMode) *termImpl {
	var c ColorMode
	if len(colorMode) == 0 {
		c = DetectColorMode()
	} else {
		c = colorMode[0]
	}

	return &termImpl{
		backend:     b,
		output:      NewStreamWriter(backendWriter{b}, c),
		syntheticCh: make(chan Event, 16),
		resizeCh:    make(chan ResizeEvent, 1),
	}
}

// Init enters raw mode and sets up terminal
func (t *termImpl) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	t.input = newInputReader(t.backend)

	t.backend.SetResizeHandler(t.pushResize)

	t.writeRaw(csiAltScreenEnter)
	t.writeRaw(csiCursorHide)
	t.writeRaw(csiAutoWrapOn)
	t.writeRaw(csiSGR0)
	t.writeRaw(csiClear)

	t.input.start()

	t.initialized = true
	return nil
}

// pushResize replaces any pending resize so the consumer only sees the latest size
func (t *termImpl) pushResize(w, h int) {
	ev := ResizeEvent{Width: w, Height: h}
	select {
	case t.resizeCh <- ev:
		return
	default:
	}
	select {
	case <-t.resizeCh:
	default:
	}
	select {
	case t.resizeCh <- ev:
	default:
	}
}

// Fini restores terminal state
func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	if t.input != nil {
		t.input.stop()
	}

	t.writeRaw(csiSGR0)
	t.writeRaw(csiCursorShow)
	t.writeRaw(csiAltScreenExit)

	t.backend.Fini()

	t.finalized = true
}

// Size returns current terminal dimensions
func (t *termImpl) Size() (int, int) {
	return t.backend.Size()
}

// ResizeChan returns the resize event channel
func (t *termImpl) ResizeChan() <-chan ResizeEvent {
	return t.resizeCh
}

// ColorMode returns the encoding color mode
func (t *termImpl) ColorMode() ColorMode {
	return t.output.ColorMode()
}

// Write encodes segments; dropped silently outside the Init/Fini window
func (t *termImpl) Write(segs []Segment) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}
	return t.output.Write(segs)
}

// BytesWritten returns total bytes delivered through the segment stream
func (t *termImpl) BytesWritten() uint64 {
	return t.output.BytesWritten()
}

// PollEvent blocks until next input event
func (t *termImpl) PollEvent() Event {
	select {
	case ev := <-t.syntheticCh:
		return ev
	default:
	}

	var inputCh <-chan Event
	if t.input != nil {
		inputCh = t.input.events()
	}

	select {
	case ev := <-t.syntheticCh:
		return ev
	case ev := <-inputCh:
		return ev
	case re := <-t.resizeCh:
		return Event{Type: EventResize, Width: re.Width, Height: re.Height}
	}
}

// PostEvent injects a synthetic event
func (t *termImpl) PostEvent(ev Event) {
	select {
	case t.syntheticCh <- ev:
	default:
	}
}

func (t *termImpl) writeRaw(data []byte) {
	t.output.WriteRaw(data)
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
