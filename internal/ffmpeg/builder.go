package ffmpeg

import (
	"strconv"
)

// SegmentArgs describes one ffmpeg segment attempt.
type SegmentArgs struct {
	Bin        string  // ffmpeg binary; "ffmpeg" when empty.
	Input      string  // Source media path.
	Output     string  // Part path to write.
	Start      float64 // Seek offset in seconds.
	SizeLimit  int64   // -fs ceiling in bytes.
	MapStreams bool    // Carry every input stream with -map 0.
	Verbose    bool
}

// BuildSegment constructs the ffmpeg argument slice for a segment attempt.
// args[0] is the binary.
func BuildSegment(a SegmentArgs) []string {
	bin := a.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	args := make([]string, 0, 28)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y")
	if a.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}

	// --- Input ---
	args = append(args,
		"-ss", strconv.FormatFloat(a.Start, 'f', -1, 64),
		"-i", a.Input,
	)

	// --- Output ceiling and stream selection ---
	args = append(args, "-fs", strconv.FormatInt(a.SizeLimit, 10))
	if a.MapStreams {
		args = append(args, "-map", "0")
	}
	args = append(args,
		"-map_chapters", "-1",
		"-async", "1",
		"-strict", "-2",
		"-c", "copy",
		a.Output,
	)
	return args
}

// SplitArgs describes one coreutils split invocation.
type SplitArgs struct {
	Bin         string // split binary; "split" when empty.
	Input       string
	Prefix      string // Output prefix, e.g. "/out/archive.bin." for archive.bin.001.
	Bytes       int64
	SuffixWidth int
}

// BuildSplit constructs the split argument slice. Suffixes start at 1 so
// the first part is ".001".
func BuildSplit(a SplitArgs) []string {
	bin := a.Bin
	if bin == "" {
		bin = "split"
	}
	width := a.SuffixWidth
	if width <= 0 {
		width = 3
	}
	return []string{
		bin,
		"--numeric-suffixes=1",
		"--suffix-length=" + strconv.Itoa(width),
		"--bytes=" + strconv.FormatInt(a.Bytes, 10),
		a.Input,
		a.Prefix,
	}
}
