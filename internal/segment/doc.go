// Package segment is the adaptive segmentation engine.
//
// [Splitter.Split] classifies a file and either runs the media loop or hands
// the file to coreutils split. The media loop is strictly sequential: each
// part's start offset is derived from the measured duration of the previous
// part, so there is exactly one live external process per job.
//
// Per iteration the loop checks the job token, runs one ffmpeg stream-copy
// bounded by -fs, and reacts to the outcome:
//
//   - tool failure with -map 0: remove what was written, drop the map and
//     restart from part 1 at 0s (once per job)
//   - tool failure without -map 0: Errored, the caller uploads unsplit
//   - output over the limit: remove it, shrink the budget, retry the part
//   - output within the limit: probe its duration and advance, or stop on a
//     zero duration (PartialCorrupt), a full-length part (SingleUnsplit) or
//     a negligible tail (Completed)
//
// Parts are left in the destination directory; the caller lists them.
package segment
