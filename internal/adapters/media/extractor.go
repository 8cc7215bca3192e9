// Package media prepares audio for speech recognition: it pulls the audio
// track out of video files and converts compressed audio to 16 kHz WAV.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/observability/logging"
	"github.com/devbush/subtranslate/internal/ports"
)

// Extractor implements ports.AudioExtractor
type Extractor struct {
	ffmpegPath  string
	useEmbedded bool
	logger      zerolog.Logger
}

// NewExtractor creates an extractor. ffmpegPath overrides the ffmpeg
// lookup; when no ffmpeg is found the embedded WebAssembly build is used.
func NewExtractor(ffmpegPath string) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = FindFFmpeg()
	}
	return &Extractor{
		ffmpegPath:  ffmpegPath,
		useEmbedded: ffmpegPath == "",
		logger:      logging.WithComponent("media"),
	}
}

// Backend names the ffmpeg used for video: a path or "embedded"
func (e *Extractor) Backend() string {
	if e.useEmbedded {
		return "embedded"
	}
	return e.ffmpegPath
}

// Extract returns a path whisper can read. Audio files pass through
// untouched; video is converted to <destDir>/audio.wav.
func (e *Extractor) Extract(ctx context.Context, inputPath string, kind domain.MediaKind, destDir string) (string, error) {
	switch kind {
	case domain.MediaAudio:
		return inputPath, nil
	case domain.MediaVideo:
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, kind)
	}

	output := filepath.Join(destDir, "audio.wav")
	e.logger.Debug().Str("input", inputPath).Str("ffmpeg", e.Backend()).Msg("extracting audio")

	var err error
	if e.useEmbedded {
		err = runEmbeddedFFmpeg(ctx, inputPath, output)
	} else {
		err = runFFmpeg(ctx, e.ffmpegPath, inputPath, output)
	}
	if err != nil {
		os.Remove(output)
		return "", err
	}

	if d, err := WAVDuration(output); err == nil {
		e.logger.Debug().Dur("duration", d).Msg("audio extracted")
	}
	return output, nil
}

// ToWAV converts an audio file to 16 kHz mono WAV in destDir. MP3 is
// decoded natively; other formats go through ffmpeg.
func (e *Extractor) ToWAV(ctx context.Context, inputPath, destDir string) (string, error) {
	output := filepath.Join(destDir, strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))+".wav")

	if !strings.EqualFold(filepath.Ext(inputPath), ".mp3") {
		if _, err := e.Extract(ctx, inputPath, domain.MediaVideo, destDir); err != nil {
			return "", err
		}
		return filepath.Join(destDir, "audio.wav"), nil
	}

	samples, rate, err := decodeMP3(inputPath)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := writeWAV(output, resample(samples, rate), SampleRate); err != nil {
		os.Remove(output)
		return "", fmt.Errorf("failed to write wav: %w", err)
	}
	return output, nil
}

var _ ports.AudioExtractor = (*Extractor)(nil)
