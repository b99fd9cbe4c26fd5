package segment

import (
	"context"

	"github.com/backmassage/muxsplit/internal/doctype"
	"github.com/backmassage/muxsplit/internal/probe"
)

// Status is the terminal state of a split job.
type Status int

const (
	Completed      Status = iota
	PartialCorrupt        // A part probed at zero duration; earlier parts kept.
	SingleUnsplit         // One part spans the whole source.
	Aborted               // Cancelled through the job token.
	Errored               // Caller should upload the original unsplit.
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case PartialCorrupt:
		return "partial_corrupt"
	case SingleUnsplit:
		return "single_unsplit"
	case Aborted:
		return "aborted"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Success reports whether the parts on disk are usable as-is.
func (s Status) Success() bool {
	return s == Completed || s == PartialCorrupt || s == SingleUnsplit
}

// Result is returned to the caller. It never lists files; Parts is only a
// count and DestDir says where to look.
type Result struct {
	Status   Status
	Parts    int
	DestDir  string
	Reason   string // Set for Errored.
	Warnings []string
}

// Request describes one file to split.
type Request struct {
	JobID       string // Optional; tags log records.
	Source      string
	TotalSize   int64 // 0 means stat Source.
	DisplayName string
	DestDir     string
	SplitSize   int64 // Requested part size; capped at the upload limit.
}

// Prober is the probe surface the engine uses.
type Prober interface {
	Describe(ctx context.Context, path string) (probe.MediaDescriptor, error)
	StreamCounts(ctx context.Context, path string) (probe.StreamCounts, error)
}

// Classifier decides between the media loop and the generic splitter.
type Classifier interface {
	Classify(ctx context.Context, path string) (doctype.Kind, error)
}

// OutcomeKind tags the result of one segment attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeToolFailure
	OutcomeCancelled
	OutcomeOversize
)

// Outcome is the result of one ffmpeg attempt plus, on success, the probed
// duration of the part it wrote.
type Outcome struct {
	Kind     OutcomeKind
	Path     string
	Size     int64
	Duration float64
	Stderr   string
	Overflow int64
}

// jobState is the mutable per-job loop state.
type jobState struct {
	source   string
	total    int64
	name     string
	destDir  string
	budget   int64
	start    float64
	part     int
	duration float64
}
