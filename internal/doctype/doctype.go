// Package doctype decides whether a file is video, audio, image or an
// opaque document before splitting. Archive names short-circuit to
// "document"; otherwise the file content is sniffed and, for video or
// unidentified binaries, ffprobe's stream list has the final word.
package doctype

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/backmassage/muxsplit/internal/probe"
)

// Kind is the classification of one file. The zero value means "document".
type Kind struct {
	Video bool
	Audio bool
	Image bool
	MIME  string
}

// IsMedia reports whether the file should take the ffmpeg segment path.
// Only video qualifies; audio-only files are byte-split like documents.
func (k Kind) IsMedia() bool { return k.Video }

func (k Kind) String() string {
	switch {
	case k.Video:
		return "video"
	case k.Audio:
		return "audio"
	case k.Image:
		return "image"
	default:
		return "document"
	}
}

// StreamCounter is the probe mode used for classification.
type StreamCounter interface {
	StreamCounts(ctx context.Context, path string) (probe.StreamCounts, error)
}

// Classifier classifies files using content sniffing and a StreamCounter.
type Classifier struct {
	Counter StreamCounter
}

// New returns a Classifier backed by counter.
func New(counter StreamCounter) *Classifier {
	return &Classifier{Counter: counter}
}

// Classify returns the Kind of the file at path. Sniffing failures are
// returned as errors; a probe failure degrades to "document".
func (c *Classifier) Classify(ctx context.Context, path string) (Kind, error) {
	if IsArchive(path) || reArchiveLike.MatchString(strings.ToLower(path)) {
		return Kind{}, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Kind{}, fmt.Errorf("detect mime %s: %w", path, err)
	}
	mime := mt.String()
	k := Kind{MIME: mime}
	switch {
	case strings.HasPrefix(mime, "audio/"):
		k.Audio = true
		return k, nil
	case strings.HasPrefix(mime, "image/"):
		k.Image = true
		return k, nil
	case !strings.HasPrefix(mime, "video/") && !strings.HasSuffix(mime, "octet-stream"):
		return k, nil
	}

	if c.Counter == nil {
		return k, nil
	}
	counts, err := c.Counter.StreamCounts(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return k, ctx.Err()
		}
		return k, nil
	}
	k.Video = counts.HasVideo()
	k.Audio = counts.HasAudio()
	return k, nil
}

var archiveExts = []string{
	".tar.bz2", ".tar.gz", ".bz2", ".gz", ".tar.xz", ".tar", ".tbz2", ".tgz",
	".lzma2", ".zip", ".7z", ".z", ".rar", ".iso", ".wim", ".cab", ".apm",
	".arj", ".chm", ".cpio", ".cramfs", ".deb", ".dmg", ".fat", ".hfs",
	".lzh", ".lzma", ".mbr", ".msi", ".mslz", ".nsis", ".ntfs", ".rpm",
	".squashfs", ".udf", ".vhd", ".xar",
}

var (
	reArchiveLike  = regexp.MustCompile(`.+(\.|_)(rar|7z|zip|bin)(\.0*\d+)?$`)
	reArchiveSplit = regexp.MustCompile(`\.r\d+$|\.7z\.\d+$|\.z\d+$|\.zip\.\d+$`)
	reFirstSplit   = regexp.MustCompile(`(\.|_)part0*1\.rar$|(\.|_)7z\.0*1$|(\.|_)zip\.0*1$`)
	reRarPart      = regexp.MustCompile(`(\.|_)part\d+\.rar$`)
)

// IsArchive reports whether name ends in a known archive extension.
func IsArchive(name string) bool {
	lower := strings.ToLower(filepath.Base(name))
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsArchiveSplit reports whether name is a volume of a multi-part archive.
func IsArchiveSplit(name string) bool {
	return reArchiveSplit.MatchString(strings.ToLower(name))
}

// IsFirstArchiveSplit reports whether name is the first volume of a
// multi-part archive, or a single .rar that is not a numbered part.
func IsFirstArchiveSplit(name string) bool {
	lower := strings.ToLower(name)
	if reFirstSplit.MatchString(lower) {
		return true
	}
	return strings.HasSuffix(lower, ".rar") && !reRarPart.MatchString(lower)
}
