package domain

import (
	"errors"
	"math"
	"testing"
)

func TestTranscript_ToText(t *testing.T) {
	tr := &Transcript{
		Segments: []Segment{
			{Start: 0.0, End: 3.5, Text: " Hello world."},
			{Start: 3.5, End: 7.0, Text: "   "},
			{Start: 7.0, End: 9.0, Text: "How are you?"},
		},
	}

	result := tr.ToText()
	expected := "Hello world. How are you?"

	if result != expected {
		t.Errorf("ToText() = %q, want %q", result, expected)
	}
}

func TestTranscript_ToTextPrefersFullText(t *testing.T) {
	tr := &Transcript{
		Text:     "full text",
		Segments: []Segment{{Start: 0, End: 1, Text: "segment"}},
	}

	if got := tr.ToText(); got != "full text" {
		t.Errorf("ToText() = %q, want %q", got, "full text")
	}
}

func TestSegment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		seg     Segment
		wantErr bool
	}{
		{"zero length", Segment{Start: 1, End: 1}, false},
		{"normal", Segment{Start: 0, End: 2.5}, false},
		{"negative start", Segment{Start: -0.1, End: 1}, true},
		{"end before start", Segment{Start: 5, End: 4}, true},
		{"NaN start", Segment{Start: math.NaN(), End: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSegment) {
				t.Errorf("Validate() error = %v, want ErrInvalidSegment", err)
			}
		})
	}
}
