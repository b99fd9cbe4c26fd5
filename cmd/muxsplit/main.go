// Command muxsplit is the CLI entrypoint for the muxsplit media splitter.
//
// It parses flags, validates configuration and paths, and runs one of:
// system diagnostics (--check), part reassembly (--join), the dry-run
// preview (--dry-run), or the split pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/muxsplit/internal/check"
	"github.com/backmassage/muxsplit/internal/config"
	"github.com/backmassage/muxsplit/internal/display"
	"github.com/backmassage/muxsplit/internal/doctype"
	"github.com/backmassage/muxsplit/internal/ffmpeg"
	"github.com/backmassage/muxsplit/internal/join"
	"github.com/backmassage/muxsplit/internal/logging"
	"github.com/backmassage/muxsplit/internal/metrics"
	"github.com/backmassage/muxsplit/internal/pipeline"
	"github.com/backmassage/muxsplit/internal/probe"
	"github.com/backmassage/muxsplit/internal/segment"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. No logger yet, so errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "muxsplit: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "muxsplit: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "muxsplit: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout)

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	// Phase 3: Signal handling. Cancelling ctx cancels every live job
	// token, which kills the running ffmpeg/split child.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			log.Warn("Received interrupt, stopping running jobs…")
			cancel()
		}
	}()

	if cfg.JoinOnly {
		return runJoin(ctx, &cfg, log)
	}

	// Resolve and validate paths: input must exist, output is created if
	// needed, and output must not be inside input.
	fi, err := os.Stat(cfg.InputPath)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputPath)
		return 1
	}
	inputAbs, err := absPath(cfg.InputPath)
	if err != nil {
		log.Error("Cannot resolve input path: %s", cfg.InputPath)
		return 1
	}
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			log.Error("Cannot create output directory: %s", cfg.OutputDir)
			return 1
		}
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil && !cfg.DryRun {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err == nil {
		if err := cfg.ValidatePaths(inputAbs, outputAbs, fi.IsDir()); err != nil {
			log.Error("%v", err)
			log.Error("Choose an output path outside: %s", cfg.InputPath)
			return 1
		}
	}

	log.Info("=== muxsplit v%s (%s) ===", version, commit)
	log.Info("In:    %s", cfg.InputPath)
	log.Info("Out:   %s", cfg.OutputDir)
	log.Info("Limit: %s", cfg.UploadLimit)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Fail fast if ffmpeg/ffprobe/split are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	prober := probe.New(cfg.FFprobeBin)
	classifier := doctype.New(prober)

	if cfg.DryRun {
		_, stats := pipeline.Preview(ctx, &cfg, log, os.Stdout, prober, classifier)
		if stats.Failed > 0 {
			return 1
		}
		return 0
	}

	rec := metrics.New()
	sp := &segment.Splitter{
		Runner:     &ffmpeg.ExecRunner{Verbose: cfg.Verbose},
		Prober:     prober,
		Classifier: classifier,
		Settings: segment.Settings{
			UploadLimit:      int64(cfg.UploadLimit),
			MaxShrinkRetries: cfg.MaxShrinkRetries,
			FFmpegBin:        cfg.FFmpegBin,
			SplitBin:         cfg.SplitBin,
			Verbose:          cfg.Verbose,
		},
		Log:     log,
		Metrics: rec,
	}

	stats := pipeline.Run(ctx, &cfg, log, sp)

	if cfg.MetricsFile != "" {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			log.Warn("Could not write metrics to %s: %v", cfg.MetricsFile, err)
		}
	}

	if ctx.Err() != nil {
		return 130
	}
	if !stats.OK() {
		return 1
	}
	return 0
}

// runJoin reassembles byte-split parts in cfg.InputPath.
func runJoin(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	fi, err := os.Stat(cfg.InputPath)
	if err != nil || !fi.IsDir() {
		log.Error("--join needs an existing directory: %s", cfg.InputPath)
		return 1
	}
	results, err := join.Dir(ctx, cfg.InputPath, log)
	if err != nil {
		log.Error("Join failed: %v", err)
		return 1
	}
	if len(results) == 0 {
		log.Warn("No split groups found in %s", cfg.InputPath)
	}
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
