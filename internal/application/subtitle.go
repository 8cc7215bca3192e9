package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/observability/logging"
	"github.com/devbush/subtranslate/internal/observability/metrics"
	"github.com/devbush/subtranslate/internal/ports"
)

// FullTextMode selects how the full translation shown in the report is made
type FullTextMode string

const (
	// FullTextJoined reuses the per-segment translations
	FullTextJoined FullTextMode = "joined"
	// FullTextSeparate translates the whole transcript in one extra call,
	// which can disagree with the subtitle cues
	FullTextSeparate FullTextMode = "separate"
)

// Stages reported to ProcessOptions.Progress
const (
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageWrite      = "write"
)

// ProgressFunc observes a run. During StageTranslate, total is the number of
// cues with text and done counts the finished ones, placeholders included.
// Both are zero for other stages. It may be called concurrently.
type ProgressFunc func(stage string, done, total int)

// ProcessOptions configures one file run
type ProcessOptions struct {
	TargetLanguage string
	SourceLanguage string // "auto" or a code applied to segment translation
	Model          string
	NoCache        bool
	OutputPath     string // subtitle destination, empty to skip writing
	FullText       FullTextMode
	Origin         string // cli, batch or web; metrics label
	RequestID      string // generated when empty
	Progress       ProgressFunc
}

// ProcessResult is everything produced for one input file
type ProcessResult struct {
	ID              string
	Source          string
	Kind            domain.MediaKind
	Transcript      *domain.Transcript
	Document        domain.Document
	Subtitle        string
	SubtitlePath    string
	FullTranslation string
	Report          string
	Substituted     []int
	FromCache       bool
	Duration        time.Duration
}

// SubtitleService orchestrates extraction, transcription, translation and
// subtitle output for a single file
type SubtitleService struct {
	transcribe *TranscribeService
	translator ports.Translator
	builder    *DocumentBuilder
	metrics    *metrics.Metrics
	tempDir    string
}

// NewSubtitleService creates a new subtitle service
func NewSubtitleService(transcribe *TranscribeService, translator ports.Translator, builder *DocumentBuilder) *SubtitleService {
	return &SubtitleService{
		transcribe: transcribe,
		translator: translator,
		builder:    builder,
	}
}

// WithMetrics records request, stage and transcript cache metrics into m
func (s *SubtitleService) WithMetrics(m *metrics.Metrics) *SubtitleService {
	s.metrics = m
	if s.transcribe != nil {
		s.transcribe.WithMetrics(m)
	}
	return s
}

// WithTempDir sets the parent of per-request work directories
func (s *SubtitleService) WithTempDir(dir string) *SubtitleService {
	s.tempDir = dir
	return s
}

// Process runs the whole pipeline for inputPath. Unsupported inputs are
// rejected before any extraction, transcription or translation call.
func (s *SubtitleService) Process(ctx context.Context, inputPath string, opts ProcessOptions) (*ProcessResult, error) {
	start := time.Now()
	id := opts.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	logger := logging.WithRequest("pipeline", id)

	result, err := s.process(ctx, id, inputPath, opts, logger)

	if s.metrics != nil {
		origin := opts.Origin
		if origin == "" {
			origin = "cli"
		}
		s.metrics.ObserveRequest(origin, start, err)
	}
	if err != nil {
		logger.Error().Err(err).Str("file", inputPath).Msg("processing failed")
		return nil, err
	}

	result.Duration = time.Since(start)
	logger.Info().
		Str("file", inputPath).
		Int("cues", len(result.Document.Cues)).
		Int("substituted", len(result.Substituted)).
		Bool("cached", result.FromCache).
		Dur("duration", result.Duration).
		Msg("subtitle ready")
	return result, nil
}

func (s *SubtitleService) process(ctx context.Context, id, inputPath string, opts ProcessOptions, logger zerolog.Logger) (*ProcessResult, error) {
	kind, err := domain.DetectMediaKind(inputPath)
	if err != nil {
		return nil, err
	}

	target, err := domain.ValidateLanguage(opts.TargetLanguage)
	if err != nil {
		return nil, err
	}
	if target == domain.AutoLanguage {
		return nil, fmt.Errorf("%w: target language is required", domain.ErrInvalidLanguage)
	}
	source, err := domain.ValidateLanguage(opts.SourceLanguage)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(inputPath); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(s.tempDir, "subtranslate-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Debug().Err(err).Str("dir", workDir).Msg("temp cleanup failed")
		}
	}()

	logger.Info().Str("file", inputPath).Str("kind", string(kind)).Str("target", target).Msg("processing")

	report := opts.Progress
	if report == nil {
		report = func(string, int, int) {}
	}

	report(StageTranscribe, 0, 0)
	stageStart := time.Now()
	tr, err := s.transcribe.Transcribe(ctx, inputPath, kind, workDir, TranscribeOptions{
		Model:    opts.Model,
		NoCache:  opts.NoCache,
		Language: source,
	}, logger)
	if err != nil {
		return nil, err
	}
	s.observeStage("transcribe", stageStart)

	transcript := tr.Transcript
	logger.Debug().
		Str("language", transcript.Language).
		Int("segments", len(transcript.Segments)).
		Bool("cached", tr.FromCache).
		Msg("transcribed")

	total := 0
	for _, seg := range transcript.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			total++
		}
	}
	buildOpts := s.builder.Options()
	logger.Debug().
		Int("cues", total).
		Int("concurrency", buildOpts.Concurrency).
		Str("on_error", buildOpts.Policy.String()).
		Msg("translating")

	var done atomic.Int64
	report(StageTranslate, 0, total)
	stageStart = time.Now()
	built, err := s.builder.Build(ctx, transcript.Segments, func(ctx context.Context, text string) (string, error) {
		out, err := s.translator.Translate(ctx, text, source, target)
		// a failed cue is finished too: it either aborts the run or keeps its source text
		report(StageTranslate, int(done.Add(1)), total)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	s.observeStage("translate", stageStart)
	if s.metrics != nil {
		s.metrics.CuesWritten.Add(float64(len(built.Document.Cues)))
		s.metrics.PlaceholderCues.Add(float64(len(built.Substituted)))
	}
	if len(built.Substituted) > 0 {
		logger.Warn().Ints("cues", built.Substituted).Msg("kept original text for failed translations")
	}

	fullTranslation, err := s.fullTranslation(ctx, transcript, built, opts.FullText, target, logger)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		ID:              id,
		Source:          inputPath,
		Kind:            kind,
		Transcript:      transcript,
		Document:        built.Document,
		Subtitle:        built.Subtitle(),
		FullTranslation: fullTranslation,
		Report:          BuildReport(transcript.Language, transcript.ToText(), fullTranslation),
		Substituted:     built.Substituted,
		FromCache:       tr.FromCache,
	}

	if opts.OutputPath != "" {
		report(StageWrite, 0, 0)
		if err := WriteFileAtomic(opts.OutputPath, []byte(result.Subtitle)); err != nil {
			return nil, fmt.Errorf("failed to write subtitle: %w", err)
		}
		result.SubtitlePath = opts.OutputPath
	}

	return result, nil
}

func (s *SubtitleService) fullTranslation(ctx context.Context, transcript *domain.Transcript, built *BuildResult, mode FullTextMode, target string, logger zerolog.Logger) (string, error) {
	if mode != FullTextSeparate {
		return built.JoinedTranslation(), nil
	}

	text := transcript.ToText()
	if text == "" {
		return "", nil
	}

	source := transcript.Language
	if source == "" {
		source = domain.AutoLanguage
	}
	out, err := s.translator.Translate(ctx, text, source, target)
	if err != nil {
		return "", fmt.Errorf("full text: %w: %w", domain.ErrTranslationFailed, err)
	}
	out = strings.TrimSpace(out)
	if out != built.JoinedTranslation() {
		logger.Warn().Msg("full translation differs from the subtitle cues")
	}
	return out, nil
}

func (s *SubtitleService) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, start)
	}
}

// BuildReport renders the on-screen summary of a run
func BuildReport(language, original, translation string) string {
	lang := language
	if lang == "" {
		lang = "unknown"
	}
	if name := domain.LanguageName(language); name != "" {
		lang = fmt.Sprintf("%s (%s)", language, name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Detected language: %s\n\n", lang)
	sb.WriteString("--- Original text ---\n")
	sb.WriteString(original)
	sb.WriteString("\n\n--- Full translation ---\n")
	sb.WriteString(translation)
	return sb.String()
}

// UserMessage renders an error for display. Unsupported formats keep their
// own message; everything else is reported as a processing failure.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrNoInput) {
		return err.Error()
	}
	return "processing failed: " + err.Error()
}

// DefaultOutputPath returns <dir>/<name>.<target>.srt for an input file
func DefaultOutputPath(inputPath, target string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), base+"."+target+".srt")
}
