package domain

import (
	"fmt"
	"math"
	"strings"
)

// Cue is one timed caption entry of a subtitle document
type Cue struct {
	Index int    `json:"index"`
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// NewCue formats the segment's time range and pairs it with already wrapped text
func NewCue(index int, seg Segment, text string) (Cue, error) {
	if err := seg.Validate(); err != nil {
		return Cue{}, err
	}
	start, err := FormatTimestamp(seg.Start)
	if err != nil {
		return Cue{}, err
	}
	end, err := FormatTimestamp(seg.End)
	if err != nil {
		return Cue{}, err
	}
	return Cue{Index: index, Start: start, End: end, Text: text}, nil
}

// Document is an ordered sequence of cues
type Document struct {
	Cues []Cue `json:"cues"`
}

// String serializes the document in SubRip form. Every block, the last one
// included, is followed by a blank line.
func (d Document) String() string {
	var sb strings.Builder
	for _, cue := range d.Cues {
		fmt.Fprintf(&sb, "%d\n", cue.Index)
		fmt.Fprintf(&sb, "%s --> %s\n", cue.Start, cue.End)
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Texts returns the cue texts in order
func (d Document) Texts() []string {
	texts := make([]string, len(d.Cues))
	for i, cue := range d.Cues {
		texts[i] = cue.Text
	}
	return texts
}

// maxTimestampSeconds keeps the microsecond count inside int64
const maxTimestampSeconds = math.MaxInt64 / 1e6

// FormatTimestamp converts seconds to HH:MM:SS,mmm. Milliseconds are truncated,
// not rounded. Hours are not capped and widen past two digits.
//
// The value is first snapped to whole microseconds so that binary float noise
// (3661.999 is stored as 3661.99899999...) does not drop a millisecond. As a
// consequence a value within half a microsecond below a millisecond boundary
// lands on that boundary: 0.9999996 formats as 00:00:01,000.
func FormatTimestamp(seconds float64) (string, error) {
	if seconds < 0 || math.IsNaN(seconds) || seconds > maxTimestampSeconds {
		return "", fmt.Errorf("%w: %v", ErrInvalidTimestamp, seconds)
	}

	micros := int64(math.Round(seconds * 1e6))
	whole := micros / 1e6
	millis := (micros % 1e6) / 1000

	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis), nil
}
