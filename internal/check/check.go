// Package check provides system diagnostics (--check mode), pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe and split, and the
// free-space threshold consulted before each split job.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/backmassage/muxsplit/internal/config"
)

// Sentinel errors returned by CheckDeps and EnsureFreeSpace.
var (
	ErrFFmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFFprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrSplitNotFound   = errors.New("split not found on PATH")
	ErrLowDiskSpace    = errors.New("not enough free disk space")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability and
// versions of ffmpeg, ffprobe and split, then free space at the output
// directory. Informational only; it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "ffmpeg", cfg.FFmpegBin, "-version")
	checkTool(log, "ffprobe", cfg.FFprobeBin, "-version")
	checkTool(log, "split", cfg.SplitBin, "--version")
	checkLavfiCopy(log, cfg.FFmpegBin)

	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	free, err := FreeSpace(dir)
	if err != nil {
		log.Warn("Could not read free space for %s: %v", dir, err)
		return
	}
	msg := fmt.Sprintf("Free space at %s: %s", dir, humanize.IBytes(free))
	if cfg.MinFreeSpace > 0 && free < uint64(cfg.MinFreeSpace) {
		log.Error("%s (below --min-free %s)", msg, cfg.MinFreeSpace)
		return
	}
	log.Success("%s", msg)
}

// checkTool verifies bin resolves and logs the first line of its version.
func checkTool(log Logger, name, bin, versionFlag string) {
	path, err := exec.LookPath(bin)
	if err != nil {
		log.Error("%s not found (%s)", name, bin)
		return
	}
	out, err := exec.Command(path, versionFlag).Output()
	if err != nil {
		log.Warn("%s found at %s but %s failed: %v", name, path, versionFlag, err)
		return
	}
	log.Success("%s: %s", name, firstLine(string(out)))
}

// checkLavfiCopy runs a tiny synthetic stream-copy with a size ceiling, the
// same flags a real segment uses.
func checkLavfiCopy(log Logger, bin string) {
	log.Info("Testing stream-copy with -fs...")
	ok := runSilent(bin,
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=1",
		"-fs", "1000000", "-map_chapters", "-1",
		"-f", "null", "-",
	)
	if ok {
		log.Success("Stream-copy test passed")
	} else {
		log.Error("Stream-copy test failed")
	}
}

// CheckDeps is the pre-pipeline validation: it verifies that the configured
// ffmpeg, ffprobe and split binaries resolve. Returns a sentinel error on
// failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return ErrFFmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobeBin); err != nil {
		return ErrFFprobeNotFound
	}
	if _, err := exec.LookPath(cfg.SplitBin); err != nil {
		return ErrSplitNotFound
	}
	return nil
}

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem holding path. A path that does not exist yet is resolved to
// its nearest existing ancestor.
func FreeSpace(path string) (uint64, error) {
	p, err := existingAncestor(path)
	if err != nil {
		return 0, err
	}
	u, err := disk.Usage(p)
	if err != nil {
		return 0, fmt.Errorf("disk usage %s: %w", p, err)
	}
	return u.Free, nil
}

// EnsureFreeSpace returns ErrLowDiskSpace (wrapped with the numbers) when
// fewer than need bytes are free at path. need <= 0 disables the check.
func EnsureFreeSpace(path string, need int64) error {
	if need <= 0 {
		return nil
	}
	free, err := FreeSpace(path)
	if err != nil {
		return err
	}
	if free < uint64(need) {
		return fmt.Errorf("%w: %s free at %s, need %s",
			ErrLowDiskSpace, humanize.IBytes(free), path, humanize.IBytes(uint64(need)))
	}
	return nil
}

// --- internal helpers ---

func existingAncestor(path string) (string, error) {
	p, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("no existing ancestor for %s", path)
		}
		p = parent
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
