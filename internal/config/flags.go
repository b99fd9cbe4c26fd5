package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into size policy, tools, behavior, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFlags parses args (without the program name) into cfg. A --config
// file, when given, is loaded first so that explicit flags override it. On
// --help or --version it prints and exits. On error it returns non-nil (e.g.
// unknown flag, missing positional args).
func ParseFlags(cfg *Config, version string, args []string) error {
	if path := scanConfigFlag(args); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("muxsplit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(os.Stderr, version) }

	var negated negatedFlags

	defineSizeFlags(fs, cfg)
	defineToolFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printUsage(os.Stderr, version)
			os.Exit(0)
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(os.Stderr, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "muxsplit v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// scanConfigFlag finds --config/-config in args without a full parse, so the
// file can be applied underneath the real flag values.
func scanConfigFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// defineSizeFlags registers --limit, --split-size, --max-shrink, --min-free.
func defineSizeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&cfg.UploadLimit, "limit", "Upload limit per part (e.g. 2000MiB)")
	fs.Var(&cfg.SplitSize, "split-size", "Target part size (default: upload limit)")
	fs.Var(&cfg.SplitSize, "s", "Same as --split-size")
	fs.IntVar(&cfg.MaxShrinkRetries, "max-shrink", cfg.MaxShrinkRetries, "Oversize shrink retries per job")
	fs.Var(&cfg.MinFreeSpace, "min-free", "Free space that must remain on the output volume")
}

// defineToolFlags registers --ffmpeg, --ffprobe, --split.
func defineToolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg", cfg.FFmpegBin, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobeBin, "ffprobe", cfg.FFprobeBin, "ffprobe binary")
	fs.StringVar(&cfg.SplitBin, "split", cfg.SplitBin, "Byte splitter binary (coreutils split)")
}

// defineBehaviorFlags registers seed, jobs, dry-run, join.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Write parts into a splited_files subdirectory")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Files split concurrently")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Preview only; do not split")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.JoinOnly, "join", false, "Reassemble byte-split parts in <dir> and exit")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log, --metrics.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.StringVar(&cfg.MetricsFile, "metrics", cfg.MetricsFile, "Write Prometheus textfile metrics on exit")
}

// defineUtilityFlags registers --config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputPath and OutputDir. --check takes none,
// --join takes one directory, splitting takes input and output_dir.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch {
	case cfg.CheckOnly:
		return nil
	case cfg.JoinOnly:
		if len(args) != 1 {
			return fmt.Errorf("--join needs exactly one directory")
		}
		cfg.InputPath = NormalizeDirArg(args[0])
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly input and output_dir")
	}
	cfg.InputPath = NormalizeDirArg(args[0])
	cfg.OutputDir = NormalizeDirArg(args[1])
	return nil
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "muxsplit v" + version + " - split oversized media into upload-sized parts"},
		{"", ""},
		{"  muxsplit [OPTIONS] <input> <output_dir>", ""},
		{"  muxsplit --join <dir>", ""},
		{"", ""},
		{"Size policy", ""},
		{"  --limit <size>", "Upload limit per part (default: 2000MiB)"},
		{"  -s, --split-size <size>", "Target part size (default: upload limit)"},
		{"  --max-shrink <n>", "Oversize shrink retries per job (default: 8)"},
		{"  --min-free <size>", "Free space to keep on the output volume"},
		{"", ""},
		{"Tools", ""},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"  --split <path>", "Byte splitter (default: split)"},
		{"", ""},
		{"Behavior", ""},
		{"  --seed", "Write parts into splited_files/"},
		{"  -j, --jobs <n>", "Files split concurrently (default: 1)"},
		{"  -d, --dry-run", "Preview only; do not split"},
		{"  --join", "Reassemble byte-split parts and exit"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "YAML config file (flags override it)"},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  --metrics <path>", "Write Prometheus textfile metrics"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, split, disk)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
