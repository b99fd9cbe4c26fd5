package probe

import (
	"math"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Describe reduces a ProbeResult to the descriptor consumed by the planner.
// A result without a usable format section yields the zero descriptor.
func Describe(pr *ProbeResult) MediaDescriptor {
	if pr == nil {
		return MediaDescriptor{}
	}
	d := MediaDescriptor{
		DurationSeconds: math.Round(pr.Format.Duration),
		Streams:         pr.Counts(),
		Artist:          pr.Tag("artist"),
		Title:           pr.Tag("title"),
	}
	if pr.LeadVideo != nil {
		d.ResolutionBucket = ResolutionBucket(pr.LeadVideo.Height)
	}
	for _, a := range pr.AudioStreams {
		d.Languages = appendLanguage(d.Languages, a.Language)
	}
	for _, s := range pr.SubtitleStreams {
		d.SubtitleLanguages = appendLanguage(d.SubtitleLanguages, s.Language)
	}
	return d
}

var resolutionBuckets = []struct {
	maxHeight int
	label     string
}{
	{480, "480p"},
	{540, "540p"},
	{720, "720p"},
	{1080, "1080p"},
	{2160, "2160p"},
	{4320, "4320p"},
}

// ResolutionBucket maps a frame height to the smallest standard label that
// contains it. Heights above 4320 report "8640p"; unknown heights report "".
func ResolutionBucket(height int) string {
	if height <= 0 {
		return ""
	}
	for _, b := range resolutionBuckets {
		if height <= b.maxHeight {
			return b.label
		}
	}
	return "8640p"
}

var languageNamer = display.English.Languages()

// LanguageName returns the English display name for an ISO 639 code
// ("jpn" -> "Japanese"). Undetermined or unparseable codes return "".
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	lt, err := language.Parse(code)
	if err != nil || lt == language.Und {
		return ""
	}
	return languageNamer.Name(lt)
}

func appendLanguage(list []string, code string) []string {
	name := LanguageName(code)
	if name == "" {
		return list
	}
	for _, have := range list {
		if have == name {
			return list
		}
	}
	return append(list, name)
}

// readEmbeddedTags reads ID3/MP4/FLAC/Ogg tags directly from the file.
// Any failure yields empty strings.
func readEmbeddedTags(path string) (artist, title string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(m.Artist()), strings.TrimSpace(m.Title())
}
