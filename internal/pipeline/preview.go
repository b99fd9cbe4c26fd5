package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/muxsplit/internal/config"
	"github.com/backmassage/muxsplit/internal/display"
	"github.com/backmassage/muxsplit/internal/doctype"
	"github.com/backmassage/muxsplit/internal/logging"
	"github.com/backmassage/muxsplit/internal/planner"
	"github.com/backmassage/muxsplit/internal/probe"
	"github.com/backmassage/muxsplit/internal/term"
)

// Describer is the probe surface Preview needs.
type Describer interface {
	Describe(ctx context.Context, path string) (probe.MediaDescriptor, error)
}

// Classifier picks the split mode for a file.
type Classifier interface {
	Classify(ctx context.Context, path string) (doctype.Kind, error)
}

// Row is one line of the preview table.
type Row struct {
	Name       string
	Size       int64
	Duration   float64
	Resolution string
	Languages  string
	Parts      int
	Mode       string // "media" or "bytes".
}

const maxNameWidth = 50

// Preview discovers files, classifies and probes each oversized one, and
// prints the planned split as a table to w. Nothing is written to disk.
// Stats count planned jobs as Split.
func Preview(ctx context.Context, cfg *config.Config, log *logging.Logger, w io.Writer, d Describer, c Classifier) ([]Row, *RunStats) {
	stats := &RunStats{}

	files, err := Discover(cfg.InputPath)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return nil, stats
	}
	stats.Total = len(files)
	if len(files) == 0 {
		log.Warn("No files found in %s", cfg.InputPath)
		return nil, stats
	}

	limit := int64(cfg.UploadLimit)
	isTTY := w == os.Stdout && term.IsTerminal(os.Stdout)
	var rows []Row

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Interrupted")
			break
		}
		printProgress(w, isTTY, i+1, len(files), filepath.Base(path))

		fi, err := os.Stat(path)
		if err != nil {
			stats.Failed++
			continue
		}
		if fi.Size() <= limit {
			stats.Skipped++
			continue
		}

		row := Row{
			Name:  filepath.Base(path),
			Size:  fi.Size(),
			Parts: planner.PartCount(fi.Size(), limit),
			Mode:  "bytes",
		}
		kind, err := c.Classify(ctx, path)
		if err == nil && kind.IsMedia() {
			row.Mode = "media"
			if desc, err := d.Describe(ctx, path); err == nil {
				row.Duration = desc.DurationSeconds
				row.Resolution = desc.ResolutionBucket
				row.Languages = desc.LanguageList()
			} else {
				if isTTY {
					clearProgress(w)
				}
				log.Warn("Probe failed for %s: %v", row.Name, err)
			}
		}
		rows = append(rows, row)
		stats.Split++
		stats.Parts += row.Parts
		stats.TotalInputBytes += row.Size
	}
	if isTTY {
		clearProgress(w)
	}

	if len(rows) == 0 {
		log.Info("Nothing to split: all %d files fit in %s", stats.Skipped, cfg.UploadLimit)
		return nil, stats
	}
	printPreviewTable(w, rows)
	log.Info("[DRY] %d of %d files would be split into ~%d parts (%s)",
		stats.Split, stats.Total, stats.Parts, display.FormatBytes(stats.TotalInputBytes))
	return rows, stats
}

func printPreviewTable(w io.Writer, rows []Row) {
	headers := []string{"File", "Size", "Duration", "Resolution", "Languages", "Parts", "Mode"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for i, r := range rows {
		name := r.Name
		if len(name) > maxNameWidth {
			name = name[:maxNameWidth-1] + "…"
		}
		dur := "n/a"
		if r.Duration > 0 {
			dur = display.FormatDuration(r.Duration)
		}
		cells[i] = []string{
			name,
			display.FormatBytes(r.Size),
			dur,
			orNA(r.Resolution),
			orNA(r.Languages),
			fmt.Sprintf("%d", r.Parts),
			r.Mode,
		}
		for j, c := range cells[i] {
			if n := len([]rune(c)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	header := formatRow(headers, widths)
	fmt.Fprintln(w, term.Paint(term.Magenta, header))
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))
	for _, c := range cells {
		fmt.Fprintln(w, formatRow(c, widths))
	}
	fmt.Fprintln(w)
}

// formatRow pads each cell by rune count so the ellipsis does not skew
// alignment.
func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, c := range cells {
		b.WriteString("  ")
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(c))))
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// printProgress shows a live probe counter. On a TTY it writes an inline
// \r-overwritten line; otherwise it is a no-op.
func printProgress(w io.Writer, isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)
	if len(name) > 40 {
		name = name[:39] + "…"
	}
	status += name
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(w, "\r%s", status)
}

func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
}
