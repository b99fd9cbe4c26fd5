// Package probe provides ffprobe-based media inspection and typed result
// structures.
//
// Two modes are offered:
//   - [Prober.Describe] runs `-show_format -show_streams` and reduces the
//     output to a [MediaDescriptor]: rounded duration, stream counts,
//     audio/subtitle language names and a resolution bucket.
//   - [Prober.StreamCounts] runs `-show_streams` only, for cheap
//     video/audio classification of files that may not be media at all.
//
// ffprobe output is always decoded with encoding/json. A file ffprobe cannot
// read as media yields an empty descriptor, not an error; errors are kept for
// a missing binary or output that is not JSON.
package probe
