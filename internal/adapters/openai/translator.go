package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/devbush/subtranslate/internal/adapters/prompt"
	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

// Translator implements ports.Translator with chat completions
type Translator struct {
	client oai.Client
	model  oai.ChatModel
}

// NewTranslator creates a chat completion translator. timeout bounds each
// request; zero keeps the SDK default.
func NewTranslator(cfg config.TranslationConfig, timeout time.Duration) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY", domain.ErrMissingAPIKey)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	model := oai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = oai.ChatModelGPT4oMini
	}

	return &Translator{
		client: oai.NewClient(opts...),
		model:  model,
	}, nil
}

func (t *Translator) Name() string {
	return "openai"
}

func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	resp, err := t.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt.Translation(text, source, target)),
		},
		MaxTokens:   oai.Int(prompt.MaxTokens),
		Temperature: oai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices in response")
	}

	return prompt.Clean(resp.Choices[0].Message.Content), nil
}

var _ ports.Translator = (*Translator)(nil)
