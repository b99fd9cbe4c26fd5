// Package display holds human-readable formatting helpers and the banner.
package display

import (
	"fmt"
	"math"
	"strings"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatDuration renders whole seconds as "1h 2m 3s", dropping leading zero
// units. Zero or negative input yields "0s".
func FormatDuration(seconds float64) string {
	total := int64(math.Round(seconds))
	if total <= 0 {
		return "0s"
	}
	units := []struct {
		size  int64
		label string
	}{
		{86400, "d"},
		{3600, "h"},
		{60, "m"},
		{1, "s"},
	}
	var parts []string
	for _, u := range units {
		if total >= u.size {
			parts = append(parts, fmt.Sprintf("%d%s", total/u.size, u.label))
			total %= u.size
		}
	}
	return strings.Join(parts, " ")
}
