package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MediaKind classifies an input file by extension
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

var mediaExtensions = map[string]MediaKind{
	".mp3": MediaAudio,
	".mp4": MediaVideo,
}

// SupportedExtensions lists accepted input extensions
func SupportedExtensions() []string {
	return []string{".mp3", ".mp4"}
}

// DetectMediaKind maps a file name to its media kind.
func DetectMediaKind(path string) (MediaKind, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrNoInput
	}
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := mediaExtensions[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedFormat, ext)
	}
	return kind, nil
}
