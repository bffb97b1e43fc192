package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventError  // Read error
	EventClosed // Input closed
)

// Event represents a terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Width     int   // For EventResize
	Height    int   // For EventResize
	Err       error // For EventError
}

// inputReader handles raw stdin parsing
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Persistent buffer so partial UTF-8 and escape sequences survive read boundaries
	buf []byte
}

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 64),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
	}
}

func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.readLoop()
}

func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	select {
	case <-r.doneCh:
	case <-time.After(200 * time.Millisecond):
		// Reader stuck in a blocking read, proceed anyway
	}
}

func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	defer func() {
		if p := recover(); p != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", p)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			r.sendEvent(Event{Type: EventError, Err: err})
			return
		}

		if len(data) == 0 {
			// Poll timeout: a lone ESC pending in the buffer is the Escape key
			if len(r.buf) == 1 && r.buf[0] == 0x1b {
				r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
				r.buf = r.buf[:0]
			}
			select {
			case <-r.stopCh:
				r.sendEvent(Event{Type: EventClosed})
				return
			default:
				continue
			}
		}

		r.buf = append(r.buf, data...)
		consumed := parseInput(r.buf, r.sendEvent)
		r.buf = r.buf[:copy(r.buf, r.buf[consumed:])]
	}
}

// sendEvent delivers without blocking, dropping on a full channel
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	default:
	}
}

// parseInput decodes as many complete events as data holds and returns bytes consumed
func parseInput(data []byte, emit func(Event)) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b >= 0x20 && b < 0x7f:
			emit(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++

		case b == 0x1b:
			if i+1 >= n {
				return i
			}
			consumed, ev := parseEscape(data[i:])
			if consumed == 0 {
				return i
			}
			if ev.Key != KeyNone {
				emit(ev)
			}
			i += consumed

		case b < 0x20:
			if ev := parseControl(b); ev.Key != KeyNone {
				emit(ev)
			}
			i++

		case b == 0x7f:
			emit(Event{Type: EventKey, Key: KeyBackspace})
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i
			}
			rn, size := utf8.DecodeRune(data[i:])
			if rn != utf8.RuneError {
				emit(Event{Type: EventKey, Key: KeyRune, Rune: rn})
			}
			i += size
		}
	}
	return i
}

// parseEscape parses an escape sequence, returns 0 consumed on incomplete input
func parseEscape(data []byte) (int, Event) {
	switch {
	case data[1] == 0x1b:
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	case data[1] == '[':
		return parseCSI(data)
	case data[1] == 'O':
		if len(data) < 3 {
			return 0, Event{}
		}
		return 3, Event{Type: EventKey, Key: csiFinal[data[2]]}
	case data[1] >= 0x20 && data[1] < 0x7f:
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}
	}
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI handles ESC [ params final, unknown sequences are consumed silently
func parseCSI(data []byte) (int, Event) {
	param, last := 0, 0
	for end := 2; end < len(data) && end < 16; end++ {
		b := data[end]
		switch {
		case b >= '0' && b <= '9':
			param = param*10 + int(b-'0')
		case b == ';':
			last, param = param, 0
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~':
			mod := ModNone
			if last == 1 {
				mod = csiModifier(param)
			}
			return end + 1, Event{Type: EventKey, Key: csiFinal[b], Modifiers: mod}
		case b < 0x20 || b > 0x7e:
			return end, Event{}
		}
	}
	if len(data) >= 16 {
		return len(data), Event{}
	}
	return 0, Event{}
}

func parseControl(b byte) Event {
	switch b {
	case 0x03:
		return Event{Type: EventKey, Key: KeyCtrlC}
	case 0x04:
		return Event{Type: EventKey, Key: KeyCtrlD}
	case 0x08:
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x0c:
		return Event{Type: EventKey, Key: KeyCtrlL}
	case 0x1a:
		return Event{Type: EventKey, Key: KeyCtrlZ}
	}
	return Event{Type: EventKey, Key: KeyNone}
}
