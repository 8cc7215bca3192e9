package ports

import (
	"context"

	"github.com/devbush/subtranslate/internal/domain"
)

// Model represents a Whisper model
type Model struct {
	Name        string
	Size        int64 // bytes
	Description string
	Downloaded  bool
}

// TranscribeOpts configures transcription behavior
type TranscribeOpts struct {
	Model    string
	Language string // "auto" or empty for detection
}

// Transcriber handles speech-to-text conversion
type Transcriber interface {
	// Name identifies the backend, used in cache keys and logs
	Name() string

	// Transcribe converts an audio file to a transcript with timed segments
	// and the detected language
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOpts) (*domain.Transcript, error)
}

// ModelManager is implemented by transcribers that run local model files
type ModelManager interface {
	// AvailableModels returns list of available models
	AvailableModels() []Model

	// IsModelDownloaded checks if a model is available locally
	IsModelDownloaded(model string) bool

	// DownloadModel downloads a model with progress callback
	DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error

	// DeleteModel removes a downloaded model
	DeleteModel(model string) error
}
