package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/backmassage/muxsplit/internal/job"
)

// ExecResult holds the outcome of a single external command.
type ExecResult struct {
	Stderr string
	Err    error
	Killed bool // Cancelled before spawn, or terminated by the job token.
}

// OK reports a clean zero exit.
func (r ExecResult) OK() bool { return r.Err == nil && !r.Killed }

// Runner executes an argument slice built by this package. Implementations
// must check tok before spawning and attach the live process to it.
type Runner interface {
	Run(ctx context.Context, tok *job.Token, args []string) ExecResult
}

// ExecRunner runs commands with os/exec. When Verbose is set, stderr is
// tee'd to os.Stderr in real time; otherwise it is captured silently.
type ExecRunner struct {
	Verbose bool
}

// Run spawns args[0] with the remaining arguments and waits for it.
func (r ExecRunner) Run(ctx context.Context, tok *job.Token, args []string) ExecResult {
	if len(args) == 0 {
		return ExecResult{Err: errors.New("ffmpeg: empty command")}
	}
	if tok.Cancelled() || ctx.Err() != nil {
		return ExecResult{Err: ErrCancelled, Killed: true}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if r.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		return ExecResult{Err: err}
	}
	tok.Attach(cmd.Process)
	err := cmd.Wait()
	tok.Detach()

	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
		Killed: err != nil && (IsKilled(err) || tok.Cancelled() || ctx.Err() != nil),
	}
}
