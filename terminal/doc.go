// Package terminal provides direct ANSI terminal control for segment-based output.
//
// Features:
//   - True color (24-bit) and 256-color palette support
//   - Segment encoding: cursor moves, color switches, glyph runs, color resets
//   - Raw stdin input parsing with escape sequence handling
//   - SIGWINCH resize detection, coalesced to the latest size
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
