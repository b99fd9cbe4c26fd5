package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober runs ffprobe. The zero value uses "ffprobe" from PATH.
type Prober struct {
	Bin string
}

// New returns a Prober for the given ffprobe binary.
func New(bin string) *Prober {
	return &Prober{Bin: bin}
}

func (p *Prober) bin() string {
	if p == nil || p.Bin == "" {
		return "ffprobe"
	}
	return p.Bin
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed format and stream sections.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := p.run(ctx, path, "-show_format", "-show_streams")
	if err != nil {
		return nil, err
	}
	return ParseJSON(out)
}

// StreamCounts tallies video, audio and subtitle streams without reading
// the format section.
func (p *Prober) StreamCounts(ctx context.Context, path string) (StreamCounts, error) {
	out, err := p.run(ctx, path, "-show_streams")
	if err != nil {
		return StreamCounts{}, err
	}
	pr, err := ParseJSON(out)
	if err != nil {
		return StreamCounts{}, err
	}
	return pr.Counts(), nil
}

// Describe probes path and reduces the result to a MediaDescriptor. Audio
// files whose container carries no artist/title fall back to embedded tags.
func (p *Prober) Describe(ctx context.Context, path string) (MediaDescriptor, error) {
	pr, err := p.Probe(ctx, path)
	if err != nil {
		return MediaDescriptor{}, err
	}
	d := Describe(pr)
	if d.Artist == "" && d.Title == "" && d.Streams.Video == 0 && d.Streams.Audio > 0 {
		d.Artist, d.Title = readEmbeddedTags(path)
	}
	return d, nil
}

// run executes ffprobe and returns stdout. A non-zero exit is not an error
// by itself: ffprobe still prints an (empty) JSON document for files it
// cannot parse, which decodes to "not media".
func (p *Prober) run(ctx context.Context, path string, sections ...string) ([]byte, error) {
	args := []string{"-hide_banner", "-loglevel", "error", "-print_format", "json"}
	args = append(args, sections...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, p.bin(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || len(bytes.TrimSpace(out)) == 0 {
			return nil, fmt.Errorf("ffprobe %q: %w: %s", path, err, lastLine(stderr.String()))
		}
	}
	return out, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Channels    int               `json:"channels"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: convertFormat(&raw.Format),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			vs := convertVideo(s)
			pr.VideoStreams = append(pr.VideoStreams, vs)
			if i == 0 {
				pr.LeadVideo = &vs
			}
		case "audio":
			pr.AudioStreams = append(pr.AudioStreams, convertAudio(s))
		case "subtitle":
			pr.SubtitleStreams = append(pr.SubtitleStreams, convertSubtitle(s))
		}
	}
	return pr
}

func convertFormat(f *ffprobeFormat) FormatInfo {
	return FormatInfo{
		Filename:   f.Filename,
		FormatName: f.FormatName,
		Duration:   parseFloat(f.Duration),
		Size:       parseInt64(f.Size),
		BitRate:    parseInt64(f.BitRate),
		Tags:       f.Tags,
	}
}

func convertVideo(s *ffprobeStream) VideoStream {
	return VideoStream{
		Index:         s.Index,
		Codec:         s.CodecName,
		Width:         s.Width,
		Height:        s.Height,
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
	}
}

func convertAudio(s *ffprobeStream) AudioStream {
	return AudioStream{
		Index:    s.Index,
		Codec:    s.CodecName,
		Channels: s.Channels,
		Language: s.Tags["language"],
	}
}

func convertSubtitle(s *ffprobeStream) SubtitleStream {
	return SubtitleStream{
		Index:    s.Index,
		Codec:    s.CodecName,
		Language: s.Tags["language"],
	}
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
