// Package ffmpeg builds and executes the external commands behind
// segmentation: ffmpeg stream-copy segments and the coreutils split
// fallback.
//
// Argument slices are built fresh for every attempt by conditional appends
// (builder.go); the executor runs them with stderr captured and registers the
// live process on the job token so a cancel can kill it (executor.go). Exit
// statuses are classified as success, killed, or tool failure (errors.go),
// and RetryState bounds the two local recoveries: dropping `-map 0` once and
// shrinking the byte budget a limited number of times (retry.go).
package ffmpeg
