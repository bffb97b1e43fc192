package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/tinsel/engine"
)

const (
	logDir      = "logs"
	logFileName = "tinsel.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes logs to logs/tinsel.log when debug is set and discards them
// otherwise; the terminal is in raw mode so stdout and stderr are off limits
// The returned file is nil when logging is disabled
func setupLogging(debug bool) (*os.File, *slog.Logger) {
	if !debug {
		log.SetOutput(io.Discard)
		return nil, engine.NopLogger()
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil, engine.NopLogger()
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("tinsel-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil, engine.NopLogger()
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
