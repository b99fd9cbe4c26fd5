package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/backmassage/muxsplit/internal/naming"
)

// Part names produced by earlier runs; never re-split them.
var rePartName = regexp.MustCompile(`\.part\d{3,}(\.[^.]+)?$|\.\d{3,}$`)

// Discover returns the files to consider. A file input yields itself; a
// directory is walked recursively, pruning hidden directories and
// relocation folders, skipping hidden files and existing parts. Paths are
// sorted lexicographically for deterministic processing order.
func Discover(input string) ([]string, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{input}, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != input && (strings.HasPrefix(name, ".") || name == naming.SeedDirName) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") || rePartName.MatchString(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
