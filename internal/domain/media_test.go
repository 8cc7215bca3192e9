package domain

import (
	"errors"
	"testing"
)

func TestDetectMediaKind(t *testing.T) {
	tests := []struct {
		path    string
		want    MediaKind
		wantErr error
	}{
		{"talk.mp3", MediaAudio, nil},
		{"/tmp/Clip.MP4", MediaVideo, nil},
		{"voice.wav", "", ErrUnsupportedFormat},
		{"noext", "", ErrUnsupportedFormat},
		{"archive.mp3.zip", "", ErrUnsupportedFormat},
		{"", "", ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectMediaKind(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DetectMediaKind(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectMediaKind(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("DetectMediaKind(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestSupportedExtensionsDetected(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != len(mediaExtensions) {
		t.Fatalf("SupportedExtensions() = %v, want %d entries", exts, len(mediaExtensions))
	}
	for _, ext := range exts {
		if _, err := DetectMediaKind("input" + ext); err != nil {
			t.Errorf("DetectMediaKind(%q) = %v", "input"+ext, err)
		}
	}
}
