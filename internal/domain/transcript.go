package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Segment represents a timed segment of transcribed text
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Validate checks that the segment has a usable time range
func (s Segment) Validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || s.Start < 0 {
		return fmt.Errorf("%w: start %v", ErrInvalidSegment, s.Start)
	}
	if s.End < s.Start {
		return fmt.Errorf("%w: end %v before start %v", ErrInvalidSegment, s.End, s.Start)
	}
	return nil
}

// Transcript represents the full transcription result
type Transcript struct {
	Text          string    `json:"text"`
	Segments      []Segment `json:"segments"`
	Model         string    `json:"model"`
	Language      string    `json:"language"`
	TranscribedAt time.Time `json:"transcribed_at"`
}

// ToText returns plain text concatenation of all segments
func (t *Transcript) ToText() string {
	if t.Text != "" {
		return t.Text
	}

	var parts []string
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
