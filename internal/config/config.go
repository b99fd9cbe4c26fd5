// Package config holds runtime configuration: defaults, YAML file loading,
// CLI flag parsing, and validation. Flags always win over the config file,
// and the config file wins over [DefaultConfig].
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultUploadLimit is the largest part a single upload may carry
// (2000 MiB, the common bot-API ceiling).
const DefaultUploadLimit ByteSize = 2000 * 1024 * 1024

// minUploadLimit keeps the working budget positive once the 5 MB
// container-overhead margin is subtracted.
const minUploadLimit ByteSize = 10_000_000

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputPath string `yaml:"-"`
	OutputDir string `yaml:"-"`

	// Size policy.
	UploadLimit      ByteSize `yaml:"upload_limit"`       // Default: 2000 MiB.
	SplitSize        ByteSize `yaml:"split_size"`         // Default: 0, meaning UploadLimit.
	MaxShrinkRetries int      `yaml:"max_shrink_retries"` // Default: 8.
	MinFreeSpace     ByteSize `yaml:"min_free_space"`     // Default: 0 (check disabled).

	// External tools.
	FFmpegBin  string `yaml:"ffmpeg"`  // Default: "ffmpeg".
	FFprobeBin string `yaml:"ffprobe"` // Default: "ffprobe".
	SplitBin   string `yaml:"split"`   // Default: "split".

	// Behavior flags.
	Seed     bool `yaml:"seed"` // Relocate parts into a splited_files subdirectory.
	Jobs     int  `yaml:"jobs"` // Default: 1. Concurrent split jobs.
	DryRun   bool `yaml:"dry_run"`
	JoinOnly bool `yaml:"-"` // --join: reassemble byte-split parts and exit.

	// Display and logging.
	Verbose     bool      `yaml:"verbose"`
	ColorMode   ColorMode `yaml:"color"`    // Default: "auto".
	LogFile     string    `yaml:"log_file"` // Optional log file path.
	MetricsFile string    `yaml:"metrics_file"`
	CheckOnly   bool      `yaml:"-"` // Run --check diagnostics and exit.

	// ConfigFile is the YAML file the settings were loaded from, if any.
	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		UploadLimit:      DefaultUploadLimit,
		MaxShrinkRetries: 8,
		FFmpegBin:        "ffmpeg",
		FFprobeBin:       "ffprobe",
		SplitBin:         "split",
		Jobs:             1,
		ColorMode:        ColorAuto,
	}
}

// EffectiveSplitSize returns the requested split size, falling back to the
// upload limit when unset.
func (c *Config) EffectiveSplitSize() int64 {
	if c.SplitSize <= 0 {
		return int64(c.UploadLimit)
	}
	return int64(c.SplitSize)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks numeric limits and enum fields. When not in CheckOnly mode
// it also requires the positional paths the selected mode needs.
func (c *Config) Validate() error {
	if c.UploadLimit < minUploadLimit {
		return fmt.Errorf("upload limit %s is too small (minimum %s)", c.UploadLimit, minUploadLimit)
	}
	if c.SplitSize < 0 {
		return errors.New("split size must not be negative")
	}
	if c.SplitSize > 0 && c.SplitSize < minUploadLimit {
		return fmt.Errorf("split size %s is too small (minimum %s)", c.SplitSize, minUploadLimit)
	}
	if c.MaxShrinkRetries < 1 {
		return errors.New("max shrink retries must be at least 1")
	}
	if c.Jobs < 1 {
		return errors.New("jobs must be at least 1")
	}
	if c.MinFreeSpace < 0 {
		return errors.New("minimum free space must not be negative")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	for name, bin := range map[string]string{"ffmpeg": c.FFmpegBin, "ffprobe": c.FFprobeBin, "split": c.SplitBin} {
		if strings.TrimSpace(bin) == "" {
			return fmt.Errorf("%s binary must not be empty", name)
		}
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputPath == "" {
		return errors.New("need an input path")
	}
	if c.JoinOnly {
		return nil
	}
	if c.OutputDir == "" {
		return errors.New("need exactly input and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so discovery never picks up produced
// parts. Both arguments must be absolute, symlink-resolved paths. A file
// input only forbids writing next to itself.
func (c *Config) ValidatePaths(inputAbs, outputAbs string, inputIsDir bool) error {
	if !inputIsDir {
		return nil
	}
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
