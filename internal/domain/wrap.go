package domain

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap width bounds and default, in terminal cells
const (
	MinWrapWidth     = 20
	MaxWrapWidth     = 80
	DefaultWrapWidth = 45
)

// Wrap greedily packs whitespace-separated words into lines no wider than
// width display cells. A word wider than width is kept whole on its own line.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width <= 0 {
		return strings.Join(words, " ")
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range words {
		w := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+w > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	lines = append(lines, line.String())

	return strings.Join(lines, "\n")
}
