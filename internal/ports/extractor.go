package ports

import (
	"context"

	"github.com/devbush/subtranslate/internal/domain"
)

// AudioExtractor prepares the audio track of an input file for transcription.
// Video inputs are written into destDir; audio inputs may be returned as is.
type AudioExtractor interface {
	Extract(ctx context.Context, inputPath string, kind domain.MediaKind, destDir string) (string, error)
}
