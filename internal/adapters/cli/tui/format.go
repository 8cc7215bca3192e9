package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// FormatSize renders a byte count, e.g. 1536 -> "1.5 KiB"
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatDuration renders an elapsed time with one decimal for seconds
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// FormatAge renders how long ago t was, e.g. "3 hours ago"
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "---"
	}
	return humanize.Time(t)
}

// Truncate shortens s to width display cells, adding an ellipsis
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
