package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SuffixWidth is the zero-pad width of every part index.
const SuffixWidth = 3

// SeedDirName is the subdirectory parts are relocated into when the job is
// seeding and no custom destination was chosen.
const SeedDirName = "splited_files"

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PartName returns the media part file name for source and index:
// "<stem>.partNNN<ext>".
func PartName(source string, index int) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s.part%0*d%s", strings.TrimSuffix(base, ext), SuffixWidth, index, ext)
}

// SplitPrefix returns the output prefix handed to split for source inside
// dir. split appends the numeric suffix directly, so the prefix ends in ".".
func SplitPrefix(dir, source string) string {
	return filepath.Join(dir, filepath.Base(source)) + "."
}

// ByteSplitName returns the name split produces for index: "<name>.NNN".
func ByteSplitName(source string, index int) string {
	return fmt.Sprintf("%s.%0*d", filepath.Base(source), SuffixWidth, index)
}

// Part is one discovered part file.
type Part struct {
	Path  string
	Index int
	Size  int64
	Media bool // ".partNNN<ext>" rather than split's ".NNN".
}

// ListParts returns the parts of source present in dir, ordered by index.
// Both media (".partNNN") and byte-split (".NNN") names are recognised.
func ListParts(dir, source string) ([]Part, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	media := regexp.MustCompile(`^` + regexp.QuoteMeta(strings.TrimSuffix(base, ext)) +
		`\.part(\d{` + strconv.Itoa(SuffixWidth) + `,})` + regexp.QuoteMeta(ext) + `$`)
	bytesplit := regexp.MustCompile(`^` + regexp.QuoteMeta(base) +
		`\.(\d{` + strconv.Itoa(SuffixWidth) + `,})$`)

	var parts []Part
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := media.FindStringSubmatch(e.Name())
		isMedia := m != nil
		if m == nil {
			m = bytesplit.FindStringSubmatch(e.Name())
		}
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Path: filepath.Join(dir, e.Name()), Index: idx, Size: info.Size(), Media: isMedia})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Index < parts[j].Index })
	return parts, nil
}
