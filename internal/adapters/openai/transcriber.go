// Package openai talks to OpenAI compatible APIs: the Whisper transcription
// endpoint and chat completions for translation.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

// DefaultTranscriptionModel is used when the config names none
const DefaultTranscriptionModel = "whisper-1"

// Transcriber implements ports.Transcriber with the Whisper API
type Transcriber struct {
	client *gopenai.Client
	model  string
}

// NewTranscriber creates a Whisper API transcriber
func NewTranscriber(cfg config.TranscriptionConfig) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY", domain.ErrMissingAPIKey)
	}

	clientConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.OpenAIModel
	if model == "" {
		model = DefaultTranscriptionModel
	}

	return &Transcriber{
		client: gopenai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (t *Transcriber) Name() string {
	return "openai"
}

// Transcribe uploads the audio file and maps the verbose_json segments.
// opts.Model names a local whisper size and is ignored here.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	req := gopenai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   gopenai.AudioResponseFormatVerboseJSON,
	}
	if opts.Language != "" && opts.Language != domain.AutoLanguage {
		req.Language = opts.Language
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranscriptionFailed, err)
	}

	segments := make([]domain.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, domain.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return &domain.Transcript{
		Text:          strings.TrimSpace(resp.Text),
		Segments:      segments,
		Model:         t.model,
		Language:      domain.NormalizeLanguage(resp.Language),
		TranscribedAt: time.Now(),
	}, nil
}

var _ ports.Transcriber = (*Transcriber)(nil)
