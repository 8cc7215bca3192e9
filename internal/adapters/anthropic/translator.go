// Package anthropic translates subtitle lines with Claude models.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/devbush/subtranslate/internal/adapters/prompt"
	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

// DefaultModel is used when the config names none
const DefaultModel = "claude-sonnet-4-20250514"

// Translator implements ports.Translator using the Messages API
type Translator struct {
	client *anthropic.Client
	model  string
}

// NewTranslator creates an Anthropic translator. timeout bounds each
// request; zero keeps the SDK default.
func NewTranslator(cfg config.TranslationConfig, timeout time.Duration) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", domain.ErrMissingAPIKey)
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

	client := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Translator{
		client: &client,
		model:  model,
	}, nil
}

func (a *Translator) Name() string {
	return "anthropic"
}

func (a *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: prompt.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Translation(text, source, target))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: empty response")
	}

	return prompt.Clean(content.String()), nil
}

var _ ports.Translator = (*Translator)(nil)
