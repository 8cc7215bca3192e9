package domain

import "errors"

var (
	// Input errors
	ErrUnsupportedFormat = errors.New("unsupported file format (only .mp3 and .mp4 are accepted)")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrInvalidSegment    = errors.New("invalid segment")
	ErrInvalidLanguage   = errors.New("invalid language code")
	ErrNoInput           = errors.New("no input file provided")

	// Transcription errors
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrModelNotFound       = errors.New("model not found")

	// Translation errors
	ErrTranslationFailed = errors.New("translation failed")
	ErrMissingAPIKey     = errors.New("API key not provided")

	// Cache errors
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheMiss    = errors.New("cache miss")

	// Dependency errors
	ErrFFmpegNotFound = errors.New("ffmpeg not found")
)
