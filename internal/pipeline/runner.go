package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/muxsplit/internal/check"
	"github.com/backmassage/muxsplit/internal/config"
	"github.com/backmassage/muxsplit/internal/display"
	"github.com/backmassage/muxsplit/internal/job"
	"github.com/backmassage/muxsplit/internal/logging"
	"github.com/backmassage/muxsplit/internal/naming"
	"github.com/backmassage/muxsplit/internal/segment"
)

// Splitter is the segmentation engine as seen by the pipeline.
type Splitter interface {
	Split(ctx context.Context, ctrl job.Controller, req segment.Request) segment.Result
}

// Run is the top-level batch entry point. It discovers files, runs one split
// job per oversized file with at most cfg.Jobs in flight, and returns
// aggregate stats. Cancelling ctx cancels every live job token. Dry runs go
// through [Preview] instead.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, sp Splitter) *RunStats {
	stats := &RunStats{}

	files, err := Discover(cfg.InputPath)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}
	stats.Total = len(files)
	log.Info("Found %d files, upload limit %s, %d parallel jobs",
		stats.Total, cfg.UploadLimit, cfg.Jobs)

	claims := naming.NewDirClaims()
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted; not scheduling %d remaining files", len(files)-i)
			break
		}
		path := path // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			processFile(ctx, cfg, log, sp, claims, path, stats)
			return nil
		})
	}
	_ = g.Wait()

	logSummary(log, stats)
	return stats
}

// processFile handles one file: validate → claim destination → split →
// clean up after an errored job.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	sp Splitter,
	claims *naming.DirClaims,
	path string,
	stats *RunStats,
) {
	basename := filepath.Base(path)
	limit := int64(cfg.UploadLimit)

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.add(func(s *RunStats) { s.Failed++ })
		return
	}
	if fi.Size() <= limit {
		log.Debug("Skip (within limit, %s): %s", display.FormatBytes(fi.Size()), basename)
		stats.add(func(s *RunStats) { s.Skipped++ })
		return
	}

	// --- Destination ---
	if cfg.MinFreeSpace > 0 {
		if err := check.EnsureFreeSpace(cfg.OutputDir, fi.Size()+int64(cfg.MinFreeSpace)); err != nil {
			log.Error("%s: %v", basename, err)
			stats.add(func(s *RunStats) { s.Failed++ })
			return
		}
	}
	dest := claims.Claim(path, filepath.Join(cfg.OutputDir, naming.Stem(path)))

	j := job.New(path, cfg.Seed, "")
	jlog := log.WithJob(j.ID, basename)

	stop := context.AfterFunc(ctx, j.Token().Cancel)
	defer stop()

	start := time.Now()
	res := sp.Split(ctx, j, segment.Request{
		JobID:       j.ID,
		Source:      path,
		TotalSize:   fi.Size(),
		DisplayName: basename,
		DestDir:     dest,
		SplitSize:   cfg.EffectiveSplitSize(),
	})
	elapsed := time.Since(start)

	switch res.Status {
	case segment.Aborted:
		jlog.Warn("Aborted after %d parts", res.Parts)
		stats.add(func(s *RunStats) { s.Aborted++ })
	case segment.Errored:
		jlog.Error("Split failed (%s); keep the original unsplit", res.Reason)
		removeLeftovers(jlog, res.DestDir, path)
		stats.add(func(s *RunStats) { s.Unsplit++ })
	default:
		jlog.Success("%s: %d parts in %s (%s)", res.Status, res.Parts, res.DestDir,
			display.FormatDuration(elapsed.Seconds()))
		stats.add(func(s *RunStats) {
			s.Split++
			s.Parts += res.Parts
			s.Warnings += len(res.Warnings)
			s.TotalInputBytes += fi.Size()
		})
	}
}

// removeLeftovers deletes parts an errored job left behind so the
// destination does not hold a half-split file.
func removeLeftovers(log *logging.Logger, dir, source string) {
	parts, err := naming.ListParts(dir, source)
	if err != nil {
		return
	}
	for _, p := range parts {
		if err := os.Remove(p.Path); err != nil {
			log.Warn("Could not remove %s: %v", p.Path, err)
		}
	}
}

func logSummary(log *logging.Logger, stats *RunStats) {
	s := stats.Snapshot()
	log.Info("==============================")
	log.Info("Done: %d split, %d skipped, %d unsplit, %d aborted, %d failed",
		s.Split, s.Skipped, s.Unsplit, s.Aborted, s.Failed)
	log.Info("  Parts written: %d from %s of input", s.Parts, display.FormatBytes(s.TotalInputBytes))
	if s.Warnings > 0 {
		log.Warn("  %d warning(s); see log above", s.Warnings)
	}
}
