// Package logging provides the leveled printf-style logger used across
// muxsplit. Records go through zerolog: a human console writer on the
// terminal (errors on stderr) and JSON lines in the optional log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/backmassage/muxsplit/internal/config"
	"github.com/backmassage/muxsplit/internal/term"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// Logger wraps a zerolog.Logger with the Info/Success/Warn/Error/Debug API.
// Child loggers from [Logger.With] share the parent's sinks; only the root
// owns the log file.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger resolves colors from cfg and optionally opens cfg.LogFile for
// appending. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := term.Configure(cfg.ColorMode)

	var w zerolog.LevelWriter = levelSplit{
		out: consoleWriter(os.Stdout, color),
		err: consoleWriter(os.Stderr, color),
	}

	l := &Logger{}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.MultiLevelWriter(w, f)
	}

	l.zl = zerolog.New(w).Level(levelFor(cfg.Verbose)).With().Timestamp().Logger()
	return l, nil
}

// New returns a logger writing JSON lines to w. Used by tests and callers
// embedding the splitter.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{zl: zerolog.New(w).Level(levelFor(verbose)).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func levelFor(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, NoColor: !color, TimeFormat: consoleTimeFormat}
}

// levelSplit routes error and fatal records to stderr.
type levelSplit struct {
	out io.Writer
	err io.Writer
}

func (s levelSplit) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s levelSplit) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return s.err.Write(p)
	}
	return s.out.Write(p)
}

// With returns a child logger that tags every record with key=value.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// WithJob returns a child logger carrying the job id and source file name.
func (l *Logger) WithJob(id, file string) *Logger {
	return &Logger{zl: l.zl.With().Str("job_id", id).Str("file", file).Logger()}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level with result=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str("result", "ok").Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (stderr on the console).
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger is verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}
