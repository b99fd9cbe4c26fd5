package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Matroska file with:
//   - 1 HEVC video stream (1920x1080) as the first stream
//   - 2 audio streams (jpn, eng) plus a duplicate jpn commentary track
//   - 2 subtitle streams (eng, und)
const sampleMulti = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "hevc",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": {}
    },
    {
      "index": 1,
      "codec_name": "aac",
      "codec_type": "audio",
      "channels": 2,
      "disposition": { "default": 1 },
      "tags": { "language": "jpn" }
    },
    {
      "index": 2,
      "codec_name": "ac3",
      "codec_type": "audio",
      "channels": 6,
      "disposition": { "default": 0 },
      "tags": { "language": "eng" }
    },
    {
      "index": 3,
      "codec_name": "aac",
      "codec_type": "audio",
      "channels": 2,
      "disposition": { "default": 0 },
      "tags": { "language": "jpn" }
    },
    {
      "index": 4,
      "codec_name": "ass",
      "codec_type": "subtitle",
      "tags": { "language": "eng" }
    },
    {
      "index": 5,
      "codec_name": "hdmv_pgs_subtitle",
      "codec_type": "subtitle",
      "tags": { "language": "und" }
    }
  ],
  "format": {
    "filename": "/media/test/Show.S01E01.mkv",
    "format_name": "matroska,webm",
    "duration": "1437.623000",
    "size": "4234567890",
    "bit_rate": "6873456",
    "tags": { "TITLE": "Episode 1", "ARTIST": "Studio" }
  }
}`

// Audio file whose first stream is cover art.
const sampleMusic = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mp3",
      "codec_type": "audio",
      "channels": 2,
      "tags": {}
    },
    {
      "index": 1,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 600,
      "disposition": { "attached_pic": 1 }
    }
  ],
  "format": {
    "filename": "song.mp3",
    "format_name": "mp3",
    "duration": "241.2",
    "size": "9650000",
    "tags": { "artist": "Someone", "title": "Song" }
  }
}`

// What ffprobe prints for a file it cannot read as media.
const sampleNotMedia = "{\n\n}\n"

func TestParseJSON_MultiStream(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMulti))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if pr.Format.Duration != 1437.623 {
		t.Errorf("duration: got %f, want 1437.623", pr.Format.Duration)
	}
	if pr.Format.Size != 4234567890 {
		t.Errorf("size: got %d", pr.Format.Size)
	}
	if pr.LeadVideo == nil || pr.LeadVideo.Height != 1080 {
		t.Fatalf("LeadVideo: got %+v", pr.LeadVideo)
	}

	want := StreamCounts{Video: 1, Audio: 3, Subtitle: 2}
	if diff := cmp.Diff(want, pr.Counts()); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if !pr.Counts().MultiStream() {
		t.Error("three audio streams should be multi-stream")
	}
}

func TestParseJSON_LeadVideoOnlyWhenFirst(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMusic))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if pr.LeadVideo != nil {
		t.Errorf("cover art at index 1 should not be the lead video")
	}
	if len(pr.VideoStreams) != 1 || !pr.VideoStreams[0].IsAttachedPic {
		t.Errorf("video streams: got %+v", pr.VideoStreams)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestDescribe(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMulti))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	want := MediaDescriptor{
		DurationSeconds:   1438,
		Streams:           StreamCounts{Video: 1, Audio: 3, Subtitle: 2},
		Languages:         []string{"Japanese", "English"},
		SubtitleLanguages: []string{"English"},
		ResolutionBucket:  "1080p",
		Artist:            "Studio",
		Title:             "Episode 1",
	}
	if diff := cmp.Diff(want, Describe(pr)); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_NotMedia(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleNotMedia))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	d := Describe(pr)
	if d.IsMedia() {
		t.Errorf("empty ffprobe output should not describe media: %+v", d)
	}
	if d.ResolutionBucket != "" {
		t.Errorf("bucket: got %q, want empty", d.ResolutionBucket)
	}
}

func TestDescribe_Nil(t *testing.T) {
	if Describe(nil).IsMedia() {
		t.Error("nil result should be the zero descriptor")
	}
}

func TestResolutionBucket(t *testing.T) {
	cases := []struct {
		height int
		want   string
	}{
		{0, ""},
		{360, "480p"},
		{480, "480p"},
		{481, "540p"},
		{544, "720p"},
		{720, "720p"},
		{1080, "1080p"},
		{1440, "2160p"},
		{2160, "2160p"},
		{4320, "4320p"},
		{4321, "8640p"},
	}
	for _, tc := range cases {
		if got := ResolutionBucket(tc.height); got != tc.want {
			t.Errorf("ResolutionBucket(%d) = %q, want %q", tc.height, got, tc.want)
		}
	}
}

func TestLanguageName(t *testing.T) {
	cases := map[string]string{
		"eng": "English",
		"jpn": "Japanese",
		"fr":  "French",
		"und": "",
		"":    "",
		"!!":  "",
	}
	for code, want := range cases {
		if got := LanguageName(code); got != want {
			t.Errorf("LanguageName(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestMediaDescriptorLists(t *testing.T) {
	d := MediaDescriptor{
		Languages:         []string{"Japanese", "English"},
		SubtitleLanguages: []string{"English"},
	}
	if got := d.LanguageList(); got != "Japanese, English" {
		t.Errorf("LanguageList: got %q", got)
	}
	if got := d.SubtitleList(); got != "English" {
		t.Errorf("SubtitleList: got %q", got)
	}
}

func TestTagCaseInsensitive(t *testing.T) {
	pr := &ProbeResult{Format: FormatInfo{Tags: map[string]string{"Title": "x"}}}
	if got := pr.Tag("title"); got != "x" {
		t.Errorf("Tag: got %q", got)
	}
	if got := pr.Tag("artist"); got != "" {
		t.Errorf("missing tag: got %q", got)
	}
}

// writeFakeFFprobe installs a shell script that prints body and exits with
// code, standing in for ffprobe.
func writeFakeFFprobe(t *testing.T, body string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	bodyPath := filepath.Join(dir, "out.json")
	if err := os.WriteFile(bodyPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\ncat '" + bodyPath + "'\necho 'stderr noise' >&2\nexit " + strconv.Itoa(code) + "\n"
	bin := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestProber_Describe(t *testing.T) {
	p := New(writeFakeFFprobe(t, sampleMulti, 0))
	d, err := p.Describe(context.Background(), "/media/test/Show.S01E01.mkv")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.DurationSeconds != 1438 || d.ResolutionBucket != "1080p" {
		t.Errorf("descriptor: got %+v", d)
	}
}

func TestProber_NonZeroExitWithJSONIsNotMedia(t *testing.T) {
	p := New(writeFakeFFprobe(t, sampleNotMedia, 1))
	d, err := p.Describe(context.Background(), "notes.txt")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.IsMedia() {
		t.Errorf("expected zero descriptor, got %+v", d)
	}
}

func TestProber_NonZeroExitWithoutOutput(t *testing.T) {
	p := New(writeFakeFFprobe(t, "", 1))
	if _, err := p.Describe(context.Background(), "x.mkv"); err == nil {
		t.Error("expected an error when ffprobe prints nothing")
	}
}

func TestProber_StreamCounts(t *testing.T) {
	p := New(writeFakeFFprobe(t, sampleMusic, 0))
	c, err := p.StreamCounts(context.Background(), "song.mp3")
	if err != nil {
		t.Fatalf("StreamCounts: %v", err)
	}
	if diff := cmp.Diff(StreamCounts{Video: 1, Audio: 1}, c); diff != "" {
		t.Errorf("StreamCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestProber_MissingBinary(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "no-such-ffprobe"))
	if _, err := p.StreamCounts(context.Background(), "x.mkv"); err == nil {
		t.Error("expected an error for a missing binary")
	}
}

func TestProber_Cancelled(t *testing.T) {
	p := New(writeFakeFFprobe(t, sampleMulti, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Probe(ctx, "x.mkv"); err == nil {
		t.Error("expected context error")
	}
}
