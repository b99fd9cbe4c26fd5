package ffmpeg

import (
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"syscall"
)

// ErrCancelled is returned for commands skipped because the job token was
// already cancelled.
var ErrCancelled = errors.New("cancelled")

// IsKilled reports whether err is the exit of a process terminated by
// SIGKILL, the status a cancelled job's child ends with.
func IsKilled(err error) bool {
	if errors.Is(err, ErrCancelled) {
		return true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGKILL
}

// Pre-compiled pattern for stderr that points at the stream map rather than
// the input itself. Used only to word the log line; the fallback runs on any
// failure.
var reMappingIssue = regexp.MustCompile(
	`(?i)Could not find tag for codec .* in stream|` +
		`codec not currently supported in container|` +
		`Could not write header for output file|` +
		`Subtitle encoding currently only possible|` +
		`Attachment stream \d+ has no (filename|mimetype) tag`)

// MatchMappingIssue reports whether stderr looks like a muxer rejecting one
// of the mapped streams.
func MatchMappingIssue(stderr string) bool {
	return reMappingIssue.MatchString(stderr)
}

// LastLine returns the last non-empty line of stderr, for one-line logs.
func LastLine(stderr string) string {
	s := strings.TrimSpace(stderr)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
