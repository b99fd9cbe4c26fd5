package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/library", "/media/library"},
		{"single trailing slash", "/media/library/", "/media/library"},
		{"multiple trailing slashes", "/media/library///", "/media/library"},
		{"root path", "/", "/"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{"2097152000", 2097152000, false},
		{"2000MiB", 2000 * 1024 * 1024, false},
		{"2 GB", 2_000_000_000, false},
		{" 4GiB ", 4 << 30, false},
		{"", 0, true},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseByteSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with paths", func(c *Config) {}, false},
		{"tiny limit", func(c *Config) { c.UploadLimit = 4_000_000 }, true},
		{"tiny split size", func(c *Config) { c.SplitSize = 1_000 }, true},
		{"negative split size", func(c *Config) { c.SplitSize = -1 }, true},
		{"zero shrink retries", func(c *Config) { c.MaxShrinkRetries = 0 }, true},
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, true},
		{"bad color", func(c *Config) { c.ColorMode = "sometimes" }, true},
		{"empty ffmpeg", func(c *Config) { c.FFmpegBin = " " }, true},
		{"missing output", func(c *Config) { c.OutputDir = "" }, true},
		{"join needs only input", func(c *Config) { c.JoinOnly = true; c.OutputDir = "" }, false},
		{"check needs nothing", func(c *Config) { c.CheckOnly = true; c.InputPath = ""; c.OutputDir = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InputPath = "/in"
			cfg.OutputDir = "/out"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePaths(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.ValidatePaths("/media", "/media", true))
	assert.Error(t, cfg.ValidatePaths("/media", "/media/parts", true))
	assert.NoError(t, cfg.ValidatePaths("/media", "/media-parts", true))
	assert.NoError(t, cfg.ValidatePaths("/media/movie.mkv", "/media", false))
}

func TestEffectiveSplitSize(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(DefaultUploadLimit), cfg.EffectiveSplitSize())
	cfg.SplitSize = 1 << 30
	assert.Equal(t, int64(1<<30), cfg.EffectiveSplitSize())
}

func TestParseFlags_Positional(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test", []string{"--limit", "1GiB", "-j", "3", "--seed", "/in/", "/out/"})
	require.NoError(t, err)
	assert.Equal(t, "/in", cfg.InputPath)
	assert.Equal(t, "/out", cfg.OutputDir)
	assert.Equal(t, ByteSize(1<<30), cfg.UploadLimit)
	assert.Equal(t, 3, cfg.Jobs)
	assert.True(t, cfg.Seed)
}

func TestParseFlags_Join(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, "test", []string{"--join", "/parts"}))
	assert.True(t, cfg.JoinOnly)
	assert.Equal(t, "/parts", cfg.InputPath)

	cfg = DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, "test", []string{"--join", "/a", "/b"}))
}

func TestParseFlags_MissingArgs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, "test", []string{"/in"}))
}

func TestParseFlags_NoColor(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, "test", []string{"--color", "--no-color", "--check"}))
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestParseFlags_ConfigFileUnderFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muxsplit.yaml")
	yml := "upload_limit: 1GiB\nsplit_size: 900MiB\njobs: 4\nffmpeg: /opt/ffmpeg/bin/ffmpeg\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test", []string{"--config=" + path, "-j", "2", "/in", "/out"})
	require.NoError(t, err)

	assert.Equal(t, ByteSize(1<<30), cfg.UploadLimit)
	assert.Equal(t, ByteSize(900<<20), cfg.SplitSize)
	assert.Equal(t, 2, cfg.Jobs, "flag must override file")
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFile_IntegerSizeAndUnknownKey(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("upload_limit: 2097152000\n"), 0o644))
	cfg := DefaultConfig()
	require.NoError(t, LoadFile(&cfg, good))
	assert.Equal(t, ByteSize(2097152000), cfg.UploadLimit)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("uplod_limit: 1GiB\n"), 0o644))
	cfg = DefaultConfig()
	assert.Error(t, LoadFile(&cfg, bad))
}

func TestLoadFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg := DefaultConfig()
	require.NoError(t, LoadFile(&cfg, path))
	assert.Equal(t, DefaultUploadLimit, cfg.UploadLimit)
}

func TestScanConfigFlag(t *testing.T) {
	assert.Equal(t, "a.yaml", scanConfigFlag([]string{"-v", "--config", "a.yaml"}))
	assert.Equal(t, "b.yaml", scanConfigFlag([]string{"-config=b.yaml", "/in"}))
	assert.Equal(t, "", scanConfigFlag([]string{"--", "--config", "c.yaml"}))
	assert.Equal(t, "", scanConfigFlag([]string{"/in", "/out"}))
}
