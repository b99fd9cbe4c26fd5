package planner

// Fixed policy constants.
const (
	// SafetyMargin is subtracted from the byte budget to absorb container
	// overhead that ffmpeg's -fs ceiling does not account for.
	SafetyMargin int64 = 5_000_000

	// OverlapSeconds is rewound from each measured segment duration so that
	// keyframe snapping at the cut never leaves a gap.
	OverlapSeconds = 3.0

	// TailSeconds is the longest segment treated as a negligible remnant.
	TailSeconds = 3.0

	// ContinueSeconds is the remaining duration that keeps the loop going
	// after the planned part count has been reached.
	ContinueSeconds = 4.0
)

// PartCount returns ceil(totalSize / limit). Non-positive inputs yield 0.
func PartCount(totalSize, limit int64) int {
	if totalSize <= 0 || limit <= 0 {
		return 0
	}
	n := totalSize / limit
	if totalSize%limit != 0 {
		n++
	}
	return int(n)
}

// InitialBudget returns the starting per-part byte budget: the requested
// split size capped at the upload limit, minus SafetyMargin. A non-positive
// splitSize means "use the limit".
func InitialBudget(splitSize, limit int64) int64 {
	if splitSize <= 0 || splitSize > limit {
		splitSize = limit
	}
	return splitSize - SafetyMargin
}

// Shrink returns the budget to retry with after an output overshot the
// limit by overflow bytes. The result may be non-positive; callers must
// treat that as non-convergence.
func Shrink(budget, overflow int64) int64 {
	return budget - (overflow + SafetyMargin)
}

// Advance returns the start offset of the next segment given the current
// start and the measured duration of the segment just produced.
func Advance(start, measured float64) float64 {
	return start + measured - OverlapSeconds
}

// Plan is the immutable per-job input to the segment loop.
type Plan struct {
	Parts    int     // ceil(TotalSize / Limit)
	Limit    int64   // Upload limit in bytes.
	Budget   int64   // Initial -fs value.
	Duration float64 // Rounded source duration in seconds.
}

// New builds the plan for a source of totalSize bytes and duration seconds.
func New(totalSize, splitSize, limit int64, duration float64) Plan {
	return Plan{
		Parts:    PartCount(totalSize, limit),
		Limit:    limit,
		Budget:   InitialBudget(splitSize, limit),
		Duration: duration,
	}
}

// Continue reports whether another segment should be attempted. The
// duration rule wins over the part count because stream-copy segment
// lengths are unpredictable.
func (p Plan) Continue(partIndex int, start float64) bool {
	return partIndex <= p.Parts || p.Duration-start > ContinueSeconds
}

// Verdict classifies a produced segment by its measured duration.
type Verdict int

const (
	VerdictAdvance Verdict = iota // Keep the segment and move on.
	VerdictCorrupt                // Zero duration; stop and keep prior parts.
	VerdictWhole                  // Segment spans the whole source; splitting was ineffective.
	VerdictTail                   // Negligible remnant; delete it and stop.
)

func (v Verdict) String() string {
	switch v {
	case VerdictAdvance:
		return "advance"
	case VerdictCorrupt:
		return "corrupt"
	case VerdictWhole:
		return "whole"
	case VerdictTail:
		return "tail"
	default:
		return "unknown"
	}
}

// Classify decides what to do with a segment of the given measured
// duration. Both durations are expected to be rounded to whole seconds.
func (p Plan) Classify(measured float64) Verdict {
	switch {
	case measured <= 0:
		return VerdictCorrupt
	case measured == p.Duration:
		return VerdictWhole
	case measured <= TailSeconds:
		return VerdictTail
	default:
		return VerdictAdvance
	}
}
