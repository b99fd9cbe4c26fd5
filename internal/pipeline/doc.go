// Package pipeline orchestrates file discovery, concurrent split jobs, and
// batch summary reporting.
//
// Run discovers every regular file under the input path, skips files that
// already fit the upload limit, and schedules one split job per remaining
// file through an errgroup bounded by Config.Jobs. Each job gets its own
// destination directory (claimed through naming.DirClaims) and its own
// cancellation token, wired to the run context so SIGINT/SIGTERM kills the
// live ffmpeg/split children. Preview is the --dry-run report: it probes
// and plans without writing anything.
package pipeline
