//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not attached to a tty
var ErrNotTerminal = errors.New("stdin is not a terminal")

// readPollMs bounds how long Read waits before rechecking its stop channel
const readPollMs = 100

// cooked is the tty state from before raw mode, kept at package level so
// EmergencyReset can restore it without a handle on the backend
var cooked struct {
	sync.Mutex
	fd    int
	state *term.State
}

// ttyBackend drives the controlling tty through stdin and stdout
type ttyBackend struct {
	in, out *os.File
	buf     [256]byte
	winch   *winchWatcher
}

func newBackend() Backend {
	return &ttyBackend{in: os.Stdin, out: os.Stdout}
}

func (b *ttyBackend) Init() error {
	fd := int(b.in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}

	cooked.Lock()
	cooked.fd, cooked.state = fd, state
	cooked.Unlock()
	return nil
}

func (b *ttyBackend) Fini() {
	if b.winch != nil {
		b.winch.stop()
		b.winch = nil
	}
	resetTerminalMode()
}

// Size reports the tty size in cells, 80x24 when the tty will not say
func (b *ttyBackend) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(b.out.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

func (b *ttyBackend) Write(p []byte) error {
	_, err := b.out.Write(p)
	return err
}

// Read returns the next chunk of input. A nil slice with nil error means
// nothing arrived within readPollMs or stopCh closed; the input reader
// uses the quiet period to flush a lone ESC
func (b *ttyBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	fd := int(b.in.Fd())
	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		ready, err := unix.Poll([]unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}, readPollMs)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return nil, fmt.Errorf("poll stdin: %w", err)
		case ready == 0:
			return nil, nil
		}

		n, err := unix.Read(fd, b.buf[:])
		switch {
		case err == unix.EINTR || err == unix.EAGAIN:
			continue
		case err != nil:
			return nil, fmt.Errorf("read stdin: %w", err)
		case n == 0:
			return nil, nil
		}
		return bytes.Clone(b.buf[:n]), nil
	}
}

// SetResizeHandler reports the new size on every SIGWINCH, replacing any earlier handler
func (b *ttyBackend) SetResizeHandler(handler func(width, height int)) {
	if b.winch != nil {
		b.winch.stop()
	}
	b.winch = watchWinch(b.Size, handler)
}

// winchWatcher turns SIGWINCH into size callbacks until stopped
type winchWatcher struct {
	sig  chan os.Signal
	quit chan struct{}
	done chan struct{}
}

// watchWinch subscribes before returning so no signal after the call is missed
func watchWinch(size func() (int, int), handler func(width, height int)) *winchWatcher {
	w := &winchWatcher{
		sig:  make(chan os.Signal, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	signal.Notify(w.sig, unix.SIGWINCH)

	go func() {
		defer close(w.done)
		defer signal.Stop(w.sig)
		for {
			select {
			case <-w.quit:
				return
			case <-w.sig:
				handler(size())
			}
		}
	}()
	return w
}

func (w *winchWatcher) stop() {
	close(w.quit)
	<-w.done
}

// resetTerminalMode restores the pre-raw tty state once; later calls do nothing
func resetTerminalMode() {
	cooked.Lock()
	defer cooked.Unlock()
	if cooked.state == nil {
		return
	}
	_ = term.Restore(cooked.fd, cooked.state)
	cooked.state = nil
}
