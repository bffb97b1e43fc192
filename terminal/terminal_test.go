package terminal

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type fakeBackend struct {
	mu       sync.Mutex
	out      bytes.Buffer
	w, h     int
	resize   func(w, h int)
	inited   bool
	finished bool
}

func (f *fakeBackend) Init() error { f.inited = true; return nil }
func (f *fakeBackend) Fini()       { f.finished = true }
func (f *fakeBackend) Size() (int, int) {
	return f.w, f.h
}
func (f *fakeBackend) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Write(p)
	return nil
}
func (f *fakeBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	<-stopCh
	return nil, nil
}
func (f *fakeBackend) SetResizeHandler(handler func(w, h int)) { f.resize = handler }

func (f *fakeBackend) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func TestTerminalLifecycle(t *testing.T) {
	b := &fakeBackend{w: 80, h: 24}
	term := newTerminal(b, ColorModeTrueColor)

	if err := term.Write([]Segment{{Kind: SegResetColor}}); err != nil {
		t.Fatalf("Write before Init: %v", err)
	}
	if b.output() != "" {
		t.Fatal("Write before Init reached the backend")
	}

	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	out := b.output()
	for _, seq := range []string{"\x1b[?1049h", "\x1b[?25l", "\x1b[?7h", "\x1b[2J"} {
		if !strings.Contains(out, seq) {
			t.Errorf("Init output missing %q", seq)
		}
	}

	before := len(b.output())
	if err := term.Write([]Segment{{Kind: SegCursorMove, X: 0, Y: 0}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := b.output()[before:]; got != "\x1b[1;1H" {
		t.Errorf("frame bytes = %q", got)
	}

	term.Fini()
	term.Fini()
	out = b.output()
	if strings.Count(out, "\x1b[?1049l") != 1 {
		t.Error("Fini should leave the alt screen exactly once")
	}
	if !strings.Contains(out, "\x1b[?25h") {
		t.Error("Fini should show the cursor")
	}
	if !b.finished {
		t.Error("backend not finalized")
	}
}

func TestResizeCoalescing(t *testing.T) {
	b := &fakeBackend{w: 80, h: 24}
	term := newTerminal(b, ColorModeTrueColor)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer term.Fini()

	b.resize(100, 30)
	b.resize(120, 40)
	b.resize(90, 20)

	ev := term.PollEvent()
	if ev.Type != EventResize || ev.Width != 90 || ev.Height != 20 {
		t.Fatalf("got %+v, want latest resize 90x20", ev)
	}
	select {
	case re := <-term.ResizeChan():
		t.Fatalf("stale resize left pending: %+v", re)
	default:
	}
}

func TestPostEvent(t *testing.T) {
	b := &fakeBackend{w: 80, h: 24}
	term := newTerminal(b, ColorModeTrueColor)
	term.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'q'})
	if ev := term.PollEvent(); ev.Rune != 'q' {
		t.Errorf("got %+v", ev)
	}
}

func TestEmergencyReset(t *testing.T) {
	var buf bytes.Buffer
	EmergencyReset(&buf)
	out := buf.String()
	for _, seq := range []string{"\x1b[0m", "\x1b[?25h", "\x1b[?1049l"} {
		if !strings.Contains(out, seq) {
			t.Errorf("missing %q", seq)
		}
	}
}
