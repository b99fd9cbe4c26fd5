package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/muxsplit/internal/display"
	"github.com/backmassage/muxsplit/internal/ffmpeg"
	"github.com/backmassage/muxsplit/internal/job"
	"github.com/backmassage/muxsplit/internal/logging"
	"github.com/backmassage/muxsplit/internal/metrics"
	"github.com/backmassage/muxsplit/internal/naming"
	"github.com/backmassage/muxsplit/internal/planner"
)

// Settings are the per-run knobs shared by every job.
type Settings struct {
	UploadLimit      int64
	MaxShrinkRetries int
	FFmpegBin        string
	SplitBin         string
	Verbose          bool
}

// Splitter runs split jobs. It holds no per-job state and may be shared by
// concurrent jobs as long as each job has its own destination directory.
type Splitter struct {
	Runner     ffmpeg.Runner
	Prober     Prober
	Classifier Classifier
	Settings   Settings
	Log        *logging.Logger
	Metrics    *metrics.Recorder // May be nil.
}

// Split splits req.Source into parts no larger than the upload limit.
// The controller's token is polled before every external process.
func (s *Splitter) Split(ctx context.Context, ctrl job.Controller, req Request) Result {
	started := time.Now()
	res := s.split(ctx, ctrl, req)
	s.Metrics.JobDone(res.Status.String(), time.Since(started))
	return res
}

func (s *Splitter) split(ctx context.Context, ctrl job.Controller, req Request) Result {
	tok := ctrl.Token()
	log := s.logger(req)

	if tok.Cancelled() {
		return aborted(req.DestDir)
	}

	dest := req.DestDir
	if ctrl.Seed() && ctrl.CustomDir() == "" {
		dest = filepath.Join(dest, naming.SeedDirName)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errored(dest, fmt.Sprintf("create destination: %v", err))
	}

	total := req.TotalSize
	if total <= 0 {
		fi, err := os.Stat(req.Source)
		if err != nil {
			return errored(dest, err.Error())
		}
		total = fi.Size()
	}

	kind, err := s.Classifier.Classify(ctx, req.Source)
	if err != nil {
		return errored(dest, fmt.Sprintf("classify: %v", err))
	}
	if tok.Cancelled() {
		return aborted(dest)
	}

	st := &jobState{
		source:  req.Source,
		total:   total,
		name:    displayName(req),
		destDir: dest,
	}
	if !kind.IsMedia() {
		log.Debug("%s is %s; byte-splitting", st.name, kind)
		return s.splitGeneric(ctx, tok, st, req.SplitSize, log)
	}
	return s.splitMedia(ctx, tok, st, req.SplitSize, log)
}

// splitMedia is the explicit segment loop.
func (s *Splitter) splitMedia(ctx context.Context, tok *job.Token, st *jobState, splitSize int64, log *logging.Logger) Result {
	limit := s.Settings.UploadLimit

	counts, err := s.Prober.StreamCounts(ctx, st.source)
	if err != nil {
		log.Warn("Stream count failed for %s: %v", st.name, err)
	}
	if tok.Cancelled() {
		return aborted(st.destDir)
	}
	desc, err := s.Prober.Describe(ctx, st.source)
	if err != nil {
		return errored(st.destDir, fmt.Sprintf("probe: %v", err))
	}

	plan := planner.New(st.total, splitSize, limit, desc.DurationSeconds)
	rs := ffmpeg.NewRetryState(counts.MultiStream(), s.Settings.MaxShrinkRetries)
	st.budget = plan.Budget
	st.duration = plan.Duration
	st.part, st.start = 1, 0

	log.Info("Splitting %s (%s, %s) into ~%d parts",
		st.name, display.FormatBytes(st.total), display.FormatDuration(st.duration), plan.Parts)

	var warnings []string
	kept := 0
	for plan.Continue(st.part, st.start) {
		if tok.Cancelled() {
			return aborted(st.destDir, warnings...)
		}

		out := s.attempt(ctx, tok, st, rs.MapStreams)
		switch out.Kind {
		case OutcomeCancelled:
			log.Warn("Split of %s cancelled at part %d", st.name, st.part)
			return abortedWithParts(st.destDir, kept, warnings)

		case OutcomeToolFailure:
			if rs.OnToolFailure() == ffmpeg.RetryDropMap {
				s.Metrics.Retry(ffmpeg.RetryDropMap.String())
				if ffmpeg.MatchMappingIssue(out.Stderr) {
					log.Warn("Container rejected a mapped stream in %s; retrying without -map 0", st.name)
				} else {
					log.Warn("ffmpeg failed on %s (%s); retrying without -map 0", st.name, ffmpeg.LastLine(out.Stderr))
				}
				warnings = append(warnings, st.name+": stream mapping dropped")
				removeParts(st, st.part)
				st.part, st.start = 1, 0
				kept = 0
				continue
			}
			log.Error("ffmpeg failed on %s: %s", st.name, ffmpeg.LastLine(out.Stderr))
			return Result{
				Status:   Errored,
				Parts:    kept,
				DestDir:  st.destDir,
				Reason:   ffmpeg.LastLine(out.Stderr),
				Warnings: warnings,
			}

		case OutcomeOversize:
			if rs.OnOversize() == ffmpeg.RetryNone {
				return errored(st.destDir, fmt.Sprintf(
					"part %d still over the limit after %d shrinks", st.part, rs.MaxShrinks))
			}
			next := planner.Shrink(st.budget, out.Overflow)
			if next <= 0 {
				return errored(st.destDir, fmt.Sprintf("part %d: size budget exhausted", st.part))
			}
			s.Metrics.Retry(ffmpeg.RetryShrink.String())
			log.Debug("Part %d of %s over limit by %s; budget %s -> %s", st.part, st.name,
				display.FormatBytes(out.Overflow), display.FormatBytes(st.budget), display.FormatBytes(next))
			st.budget = next
			continue
		}

		switch plan.Classify(out.Duration) {
		case planner.VerdictCorrupt:
			_ = os.Remove(out.Path)
			log.Error("Part %d of %s has no duration; keeping %d earlier parts", st.part, st.name, kept)
			return Result{Status: PartialCorrupt, Parts: kept, DestDir: st.destDir, Warnings: warnings}

		case planner.VerdictWhole:
			kept++
			s.Metrics.Part(out.Size)
			w := fmt.Sprintf("%s: one part holds the whole file; this container/stream combination cannot be split", st.name)
			log.Warn("%s", w)
			return Result{Status: SingleUnsplit, Parts: kept, DestDir: st.destDir, Warnings: append(warnings, w)}

		case planner.VerdictTail:
			_ = os.Remove(out.Path)
			log.Debug("Dropped %s tail part %d of %s", display.FormatDuration(out.Duration), st.part, st.name)
			return Result{Status: Completed, Parts: kept, DestDir: st.destDir, Warnings: warnings}
		}

		kept++
		s.Metrics.Part(out.Size)
		rs.Accept()
		log.Debug("Part %d of %s: %s, %s from %s", st.part, st.name,
			display.FormatBytes(out.Size), display.FormatDuration(out.Duration), display.FormatDuration(st.start))
		st.start = planner.Advance(st.start, out.Duration)
		st.part++
	}

	log.Success("Split %s into %d parts", st.name, kept)
	return Result{Status: Completed, Parts: kept, DestDir: st.destDir, Warnings: warnings}
}

// attempt runs one ffmpeg segment and, when it produced a part within the
// limit, probes the part's duration.
func (s *Splitter) attempt(ctx context.Context, tok *job.Token, st *jobState, mapStreams bool) Outcome {
	path := filepath.Join(st.destDir, naming.PartName(st.source, st.part))
	args := ffmpeg.BuildSegment(ffmpeg.SegmentArgs{
		Bin:        s.Settings.FFmpegBin,
		Input:      st.source,
		Output:     path,
		Start:      st.start,
		SizeLimit:  st.budget,
		MapStreams: mapStreams,
		Verbose:    s.Settings.Verbose,
	})

	res := s.Runner.Run(ctx, tok, args)
	switch {
	case res.Killed:
		s.Metrics.ToolRun("ffmpeg", "killed")
		return Outcome{Kind: OutcomeCancelled, Path: path}
	case res.Err != nil:
		s.Metrics.ToolRun("ffmpeg", "failed")
		_ = os.Remove(path)
		return Outcome{Kind: OutcomeToolFailure, Path: path, Stderr: res.Stderr}
	}
	s.Metrics.ToolRun("ffmpeg", "ok")

	fi, err := os.Stat(path)
	if err != nil {
		return Outcome{Kind: OutcomeToolFailure, Path: path, Stderr: "no output written: " + err.Error()}
	}
	size := fi.Size()
	if limit := s.Settings.UploadLimit; size > limit {
		_ = os.Remove(path)
		return Outcome{Kind: OutcomeOversize, Path: path, Size: size, Overflow: size - limit}
	}

	if tok.Cancelled() {
		return Outcome{Kind: OutcomeCancelled, Path: path}
	}
	d, err := s.Prober.Describe(ctx, path)
	if err != nil {
		if tok.Cancelled() || ctx.Err() != nil {
			return Outcome{Kind: OutcomeCancelled, Path: path}
		}
		return Outcome{Kind: OutcomeSuccess, Path: path, Size: size, Stderr: err.Error()}
	}
	return Outcome{Kind: OutcomeSuccess, Path: path, Size: size, Duration: d.DurationSeconds}
}

// splitGeneric hands the whole file to split once. No feedback, no retry.
func (s *Splitter) splitGeneric(ctx context.Context, tok *job.Token, st *jobState, splitSize int64, log *logging.Logger) Result {
	limit := s.Settings.UploadLimit
	size := splitSize
	if size <= 0 || size > limit {
		size = limit
	}

	args := ffmpeg.BuildSplit(ffmpeg.SplitArgs{
		Bin:         s.Settings.SplitBin,
		Input:       st.source,
		Prefix:      naming.SplitPrefix(st.destDir, st.source),
		Bytes:       size,
		SuffixWidth: naming.SuffixWidth,
	})
	res := s.Runner.Run(ctx, tok, args)
	switch {
	case res.Killed:
		s.Metrics.ToolRun("split", "killed")
		return aborted(st.destDir)
	case res.Err != nil:
		s.Metrics.ToolRun("split", "failed")
		log.Error("split failed on %s: %v\n%s", st.name, res.Err, res.Stderr)
		return errored(st.destDir, ffmpeg.LastLine(res.Stderr))
	}
	s.Metrics.ToolRun("split", "ok")

	parts, err := naming.ListParts(st.destDir, st.source)
	if err != nil {
		return errored(st.destDir, fmt.Sprintf("list parts: %v", err))
	}
	n := 0
	for _, p := range parts {
		if !p.Media {
			n++
			s.Metrics.Part(p.Size)
		}
	}
	log.Success("Split %s into %d byte parts", st.name, n)
	return Result{Status: Completed, Parts: n, DestDir: st.destDir}
}

func (s *Splitter) logger(req Request) *logging.Logger {
	l := s.Log
	if l == nil {
		l = logging.Nop()
	}
	if req.JobID != "" {
		return l.WithJob(req.JobID, displayName(req))
	}
	return l
}

// removeParts deletes parts 1..upto written so far by this job.
func removeParts(st *jobState, upto int) {
	for i := 1; i <= upto; i++ {
		_ = os.Remove(filepath.Join(st.destDir, naming.PartName(st.source, i)))
	}
}

func displayName(req Request) string {
	if req.DisplayName != "" {
		return req.DisplayName
	}
	return filepath.Base(req.Source)
}

func aborted(dir string, warnings ...string) Result {
	return Result{Status: Aborted, DestDir: dir, Warnings: warnings}
}

func abortedWithParts(dir string, parts int, warnings []string) Result {
	return Result{Status: Aborted, Parts: parts, DestDir: dir, Warnings: warnings}
}

func errored(dir, reason string) Result {
	return Result{Status: Errored, DestDir: dir, Reason: reason}
}
