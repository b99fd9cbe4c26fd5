// Package join reassembles byte-split parts ("name.001", "name.002", ...)
// back into the original file. Groups are detected by a ".002" member whose
// content sniffs as application/octet-stream; the joined file is written
// atomically and the parts are removed afterwards.
package join

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/renameio/v2"

	"github.com/backmassage/muxsplit/internal/naming"
)

// Logger is the subset of the logging API join needs.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Error(string, ...interface{})
}

// Result describes one reassembled file.
type Result struct {
	Path  string
	Parts int
	Size  int64
}

var reSecondPart = regexp.MustCompile(`\.0+2$`)

// Dir joins every byte-split group found directly in dir. A group that
// fails to join is logged and left untouched; the others still proceed.
func Dir(ctx context.Context, dir string, log Logger) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		name := e.Name()
		if !e.Type().IsRegular() || !reSecondPart.MatchString(name) {
			continue
		}
		mt, err := mimetype.DetectFile(filepath.Join(dir, name))
		if err != nil || !mt.Is("application/octet-stream") {
			continue
		}

		final := name[:strings.LastIndexByte(name, '.')]
		res, err := Group(ctx, dir, final)
		if err != nil {
			log.Error("Failed to join %s: %v", final, err)
			continue
		}
		log.Success("Joined %d parts into %s", res.Parts, final)
		results = append(results, res)
	}
	return results, nil
}

// Group concatenates dir/final.001..NNN into dir/final and removes the
// parts. The indices must be contiguous from 1.
func Group(ctx context.Context, dir, final string) (Result, error) {
	all, err := naming.ListParts(dir, final)
	if err != nil {
		return Result{}, err
	}
	var parts []naming.Part
	for _, p := range all {
		if !p.Media {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return Result{}, fmt.Errorf("%s: need at least two parts, found %d", final, len(parts))
	}
	for i, p := range parts {
		if p.Index != i+1 {
			return Result{}, fmt.Errorf("%s: part %03d missing", final, i+1)
		}
	}

	target := filepath.Join(dir, final)
	pf, err := renameio.NewPendingFile(target, renameio.WithPermissions(0o644))
	if err != nil {
		return Result{}, err
	}
	defer pf.Cleanup()

	var total int64
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		n, err := appendFile(pf, p.Path)
		if err != nil {
			return Result{}, fmt.Errorf("append %s: %w", filepath.Base(p.Path), err)
		}
		total += n
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return Result{}, err
	}

	for _, p := range parts {
		if err := os.Remove(p.Path); err != nil {
			return Result{}, fmt.Errorf("remove part: %w", err)
		}
	}
	return Result{Path: target, Parts: len(parts), Size: total}, nil
}

func appendFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}
