// Package term provides ANSI color state and terminal detection.
//
// [Configure] resolves the color mode once during startup; the logging
// console writer and the banner both read [Enabled] afterwards.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/muxsplit/internal/config"
)

// ANSI sequences used outside the structured logger.
const (
	Magenta = "\033[1;95m"
	NC      = "\033[0m" // Reset sequence.
)

var enabled atomic.Bool

// Configure resolves the color mode and records whether ANSI colors are on.
// It returns the resolved value for convenience.
func Configure(mode config.ColorMode) bool {
	on := resolve(mode)
	enabled.Store(on)
	return on
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return enabled.Load() }

// Paint wraps s in the given sequence when colors are enabled.
func Paint(seq, s string) string {
	if !Enabled() {
		return s
	}
	return seq + s + NC
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
