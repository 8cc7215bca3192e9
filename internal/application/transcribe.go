package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/observability/metrics"
	"github.com/devbush/subtranslate/internal/ports"
)

// TranscribeOptions configures the transcription
type TranscribeOptions struct {
	Model    string
	NoCache  bool
	Language string // empty defaults to "auto"
}

// TranscribeResult contains the transcription result
type TranscribeResult struct {
	Transcript *domain.Transcript
	FromCache  bool
}

// TranscribeService turns an input file into a transcript: cache lookup,
// audio extraction, speech recognition, cache write.
type TranscribeService struct {
	cache       ports.CacheStore
	extractor   ports.AudioExtractor
	transcriber ports.Transcriber
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewTranscribeService creates a new transcription service. cache may be nil.
func NewTranscribeService(
	cache ports.CacheStore,
	extractor ports.AudioExtractor,
	transcriber ports.Transcriber,
	cacheTTL time.Duration,
) *TranscribeService {
	return &TranscribeService{
		cache:       cache,
		extractor:   extractor,
		transcriber: transcriber,
		cacheTTL:    cacheTTL,
	}
}

// WithMetrics records cache lookups into m
func (s *TranscribeService) WithMetrics(m *metrics.Metrics) *TranscribeService {
	s.metrics = m
	return s
}

// Cache lookup results
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

func (s *TranscribeService) recordLookup(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

// Transcribe extracts audio from inputPath into workDir and transcribes it
func (s *TranscribeService) Transcribe(ctx context.Context, inputPath string, kind domain.MediaKind, workDir string, opts TranscribeOptions, logger zerolog.Logger) (*TranscribeResult, error) {
	model := opts.Model
	if model == "" {
		model = "base"
	}

	language := opts.Language
	if language == "" {
		language = domain.AutoLanguage
	}

	var key string
	if s.cache != nil && opts.NoCache {
		s.recordLookup(cacheBypass)
	}
	if s.cache != nil && !opts.NoCache {
		var err error
		key, err = s.cacheKey(inputPath, model, language)
		if err != nil {
			return nil, err
		}
		cached, err := s.cache.Get(ctx, key)
		if err == nil && cached.Transcript != nil {
			logger.Debug().Str("key", key).Msg("transcript cache hit")
			s.recordLookup(cacheHit)
			return &TranscribeResult{
				Transcript: cached.Transcript,
				FromCache:  true,
			}, nil
		}
		s.recordLookup(cacheMiss)
	}

	audioPath, err := s.extractor.Extract(ctx, inputPath, kind, workDir)
	if err != nil {
		return nil, fmt.Errorf("audio extraction failed: %w", err)
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioPath, ports.TranscribeOpts{
		Model:    model,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	transcript.Language = domain.NormalizeLanguage(transcript.Language)

	if key != "" {
		now := time.Now()
		item := &ports.CachedItem{
			Source:     filepath.Base(inputPath),
			Transcript: transcript,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.cacheTTL),
		}
		// Cache failures are non-fatal
		if err := s.cache.Set(ctx, key, item); err != nil {
			logger.Warn().Err(err).Msg("failed to cache transcript")
		}
	}

	return &TranscribeResult{
		Transcript: transcript,
		FromCache:  false,
	}, nil
}

// cacheKey identifies a transcript by file content and transcription setup
func (s *TranscribeService) cacheKey(inputPath, model, language string) (string, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash input: %w", err)
	}
	fmt.Fprintf(h, "|%s|%s|%s", s.transcriber.Name(), model, language)

	return hex.EncodeToString(h.Sum(nil))[:32], nil
}
