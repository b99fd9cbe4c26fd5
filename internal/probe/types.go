package probe

import "strings"

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
	Tags       map[string]string
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	IsAttachedPic bool
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index    int
	Codec    string
	Channels int
	Language string
}

// SubtitleStream holds the parsed properties of a single subtitle stream.
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// LeadVideo is set only when the very first stream in the file is video;
// the resolution bucket is derived from it.
type ProbeResult struct {
	Format          FormatInfo
	LeadVideo       *VideoStream
	VideoStreams    []VideoStream
	AudioStreams    []AudioStream
	SubtitleStreams []SubtitleStream
}

// Counts returns the number of streams per codec type.
func (p *ProbeResult) Counts() StreamCounts {
	return StreamCounts{
		Video:    len(p.VideoStreams),
		Audio:    len(p.AudioStreams),
		Subtitle: len(p.SubtitleStreams),
	}
}

// Tag looks up a format tag case-insensitively (ffprobe reports "title",
// "TITLE" or "Title" depending on the muxer).
func (p *ProbeResult) Tag(key string) string {
	if v, ok := p.Format.Tags[key]; ok {
		return v
	}
	for k, v := range p.Format.Tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// StreamCounts is the per-type stream tally used for document
// classification and the stream-mapping decision.
type StreamCounts struct {
	Video    int
	Audio    int
	Subtitle int
}

// HasVideo reports whether at least one video stream exists.
func (c StreamCounts) HasVideo() bool { return c.Video > 0 }

// HasAudio reports whether at least one audio stream exists.
func (c StreamCounts) HasAudio() bool { return c.Audio > 0 }

// MultiStream reports whether the file carries more than one video or more
// than one audio stream, the case where `-map 0` changes what ffmpeg copies.
func (c StreamCounts) MultiStream() bool { return c.Video > 1 || c.Audio > 1 }

// MediaDescriptor is the reduced, immutable view of a probed file that the
// planner and segment loop consume.
type MediaDescriptor struct {
	DurationSeconds   float64 // Rounded to whole seconds.
	Streams           StreamCounts
	Languages         []string // Audio language display names, stream order, no duplicates.
	SubtitleLanguages []string
	ResolutionBucket  string // "480p" … "8640p"; empty unless the first stream is video.
	Artist            string
	Title             string
}

// IsMedia reports whether the descriptor describes something ffprobe could
// read as media. The zero descriptor means "not media".
func (d MediaDescriptor) IsMedia() bool {
	return d.DurationSeconds > 0 || d.Streams.Video > 0 || d.Streams.Audio > 0
}

// LanguageList joins audio languages for captions, e.g. "English, Japanese".
func (d MediaDescriptor) LanguageList() string { return strings.Join(d.Languages, ", ") }

// SubtitleList joins subtitle languages for captions.
func (d MediaDescriptor) SubtitleList() string { return strings.Join(d.SubtitleLanguages, ", ") }
