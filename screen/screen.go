// Package screen replays terminal segments into a tcell screen
//
// It is the alternative sink to the raw ANSI terminal: tcell owns terminal setup,
// input decoding and output, while the frame diff still decides what changes
package screen

import (
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tinsel/terminal"
)

// Screen adapts a tcell.Screen to the segment sink used by the engine
type Screen struct {
	screen tcell.Screen
	mode   terminal.ColorMode

	mu    sync.Mutex
	x, y  int
	style tcell.Style
	bytes uint64
}

// New wraps s; call Init before writing
func New(s tcell.Screen, mode terminal.ColorMode) *Screen {
	return &Screen{screen: s, mode: mode, style: tcell.StyleDefault}
}

// Init initializes the tcell screen and hides the cursor
func (s *Screen) Init() error {
	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.HideCursor()
	s.screen.Clear()
	return nil
}

// Fini restores the terminal
func (s *Screen) Fini() {
	s.screen.Fini()
}

// Size returns the screen dimensions in cells
func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

// ColorMode returns the mode used to translate segment colors
func (s *Screen) ColorMode() terminal.ColorMode {
	return s.mode
}

// BytesWritten counts the UTF-8 glyph bytes handed to tcell, escapes excluded
func (s *Screen) BytesWritten() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Write applies segs to the tcell back buffer and shows it
// Glyph runs wrap at the right edge the way an autowrapping terminal does
func (s *Screen) Write(segs []terminal.Segment) error {
	if len(segs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.screen.Size()
	for i := range segs {
		seg := &segs[i]
		switch seg.Kind {
		case terminal.SegCursorMove:
			s.x, s.y = seg.X, seg.Y
		case terminal.SegSetColor:
			s.style = tcell.StyleDefault.Foreground(s.color(seg.Color))
		case terminal.SegResetColor:
			s.style = tcell.StyleDefault
		case terminal.SegGlyphRun:
			for _, r := range seg.Glyphs {
				if r == 0 {
					r = ' '
				}
				if s.x >= 0 && s.x < w && s.y >= 0 && s.y < h {
					s.screen.SetContent(s.x, s.y, r, nil, s.style)
				}
				s.bytes += uint64(utf8.RuneLen(r))
				s.x++
				if s.x >= w {
					s.x = 0
					s.y++
				}
			}
		}
	}

	s.screen.Show()
	return nil
}

func (s *Screen) color(c terminal.RGB) tcell.Color {
	if s.mode == terminal.ColorMode256 {
		return tcell.PaletteColor(int(terminal.RGBTo256(c)))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// keyMap translates tcell special keys, runes are handled separately
var keyMap = map[tcell.Key]terminal.Key{
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyBackspace:  terminal.KeyBackspace,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyCtrlC:      terminal.KeyCtrlC,
	tcell.KeyCtrlD:      terminal.KeyCtrlD,
	tcell.KeyCtrlL:      terminal.KeyCtrlL,
	tcell.KeyCtrlZ:      terminal.KeyCtrlZ,
}

// PollEvent blocks for the next tcell event and converts it
// Events with no terminal equivalent are skipped
func (s *Screen) PollEvent() terminal.Event {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return terminal.Event{Type: terminal.EventClosed}
		case *tcell.EventInterrupt:
			if te, ok := ev.Data().(terminal.Event); ok {
				return te
			}
		case *tcell.EventResize:
			w, h := ev.Size()
			return terminal.Event{Type: terminal.EventResize, Width: w, Height: h}
		case *tcell.EventError:
			return terminal.Event{Type: terminal.EventError, Err: ev}
		case *tcell.EventKey:
			if te, ok := convertKey(ev); ok {
				return te
			}
		}
	}
}

func convertKey(ev *tcell.EventKey) (terminal.Event, bool) {
	te := terminal.Event{Type: terminal.EventKey, Modifiers: convertMods(ev.Modifiers())}
	if ev.Key() == tcell.KeyRune {
		te.Key = terminal.KeyRune
		te.Rune = ev.Rune()
		return te, true
	}
	k, ok := keyMap[ev.Key()]
	if !ok {
		return te, false
	}
	te.Key = k
	return te, true
}

func convertMods(m tcell.ModMask) terminal.Modifier {
	var out terminal.Modifier
	if m&tcell.ModShift != 0 {
		out |= terminal.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= terminal.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= terminal.ModCtrl
	}
	return out
}

// PostEvent queues ev for PollEvent, dropped when the tcell queue is full
func (s *Screen) PostEvent(ev terminal.Event) {
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(ev))
}
