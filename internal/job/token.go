// Package job holds the per-file cancellation token and the controller
// interface the segment loop consults while a job runs.
package job

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Token is the cancellation handle for one job. Cancel may be called from
// any goroutine; it marks the job cancelled and kills whichever external
// process is currently attached. At most one process is attached at a time.
type Token struct {
	cancelled atomic.Bool

	mu   sync.Mutex
	proc *os.Process
}

// NewToken returns an uncancelled token.
func NewToken() *Token { return &Token{} }

// Cancel marks the token cancelled and kills the attached process, if any.
// Calling Cancel more than once is harmless.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)

	t.mu.Lock()
	p := t.proc
	t.mu.Unlock()
	if p != nil {
		_ = p.Kill()
	}
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Attach records p as the token's current process. If the token is already
// cancelled, p is killed immediately so a cancel racing a spawn is not lost.
func (t *Token) Attach(p *os.Process) {
	if t == nil || p == nil {
		return
	}
	t.mu.Lock()
	t.proc = p
	t.mu.Unlock()
	if t.cancelled.Load() {
		_ = p.Kill()
	}
}

// Detach clears the current process after it has exited.
func (t *Token) Detach() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.proc = nil
	t.mu.Unlock()
}

// Controller is the caller-owned view of a job. The segment loop reads the
// token before every external call and uses Seed/CustomDir to choose the
// destination folder.
type Controller interface {
	Token() *Token
	Seed() bool
	CustomDir() string
}

// Job is the default Controller implementation.
type Job struct {
	ID     string
	Source string

	tok  *Token
	seed bool
	dir  string
}

// New creates a job for source with a fresh id and token. dir may be empty
// to split next to the source file.
func New(source string, seed bool, dir string) *Job {
	return &Job{
		ID:     uuid.NewString(),
		Source: source,
		tok:    NewToken(),
		seed:   seed,
		dir:    dir,
	}
}

func (j *Job) Token() *Token     { return j.tok }
func (j *Job) Seed() bool        { return j.seed }
func (j *Job) CustomDir() string { return j.dir }
