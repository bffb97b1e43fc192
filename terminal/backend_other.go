//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package terminal

import "errors"

// ErrNotTerminal is returned on platforms without a raw-mode backend
var ErrNotTerminal = errors.New("terminal backend not supported on this platform")

type stubBackend struct{}

func newBackend() Backend { return stubBackend{} }

func (stubBackend) Init() error                                      { return ErrNotTerminal }
func (stubBackend) Fini()                                            {}
func (stubBackend) Size() (int, int)                                 { return 80, 24 }
func (stubBackend) Write(p []byte) error                             { return ErrNotTerminal }
func (stubBackend) Read(stopCh <-chan struct{}) ([]byte, error)      { <-stopCh; return nil, nil }
func (stubBackend) SetResizeHandler(handler func(width, height int)) {}

func resetTerminalMode() {}
