package ffmpeg

// RetryAction identifies which recovery was applied (or none).
type RetryAction int

const (
	RetryNone    RetryAction = iota
	RetryDropMap             // Restart the job without -map 0.
	RetryShrink              // Retry the same part with a smaller budget.
)

func (a RetryAction) String() string {
	switch a {
	case RetryDropMap:
		return "drop-map"
	case RetryShrink:
		return "shrink"
	default:
		return "none"
	}
}

// RetryState tracks the local recoveries applied to one segmentation job.
// Dropping the stream map happens at most once per job; shrinks are counted
// per part and reset whenever a part is accepted.
type RetryState struct {
	MapStreams bool
	mapDropped bool

	Shrinks    int
	MaxShrinks int
}

// NewRetryState starts a job with mapping as decided from the source's
// stream counts.
func NewRetryState(mapStreams bool, maxShrinks int) *RetryState {
	return &RetryState{MapStreams: mapStreams, MaxShrinks: maxShrinks}
}

// OnToolFailure decides the recovery for a nonzero ffmpeg exit. It returns
// RetryDropMap the first time while mapping is on, and RetryNone after.
func (s *RetryState) OnToolFailure() RetryAction {
	if !s.MapStreams || s.mapDropped {
		return RetryNone
	}
	s.MapStreams = false
	s.mapDropped = true
	s.Shrinks = 0
	return RetryDropMap
}

// OnOversize records a shrink for the current part. It returns RetryNone
// once MaxShrinks consecutive shrinks have been spent.
func (s *RetryState) OnOversize() RetryAction {
	if s.Shrinks >= s.MaxShrinks {
		return RetryNone
	}
	s.Shrinks++
	return RetryShrink
}

// Accept resets the per-part shrink counter after a part is kept.
func (s *RetryState) Accept() { s.Shrinks = 0 }

// MapDropped reports whether the no-map fallback has been used.
func (s *RetryState) MapDropped() bool { return s.mapDropped }
