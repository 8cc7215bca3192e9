// Package google translates text with the public Google Translate web
// endpoint used by the browser widget (client=gtx). No API key is needed.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

const defaultBaseURL = "https://translate.googleapis.com"

// Translator implements ports.Translator
type Translator struct {
	baseURL string
	client  *http.Client
}

// Option configures a Translator
type Option func(*Translator)

// WithBaseURL points the translator at another host
func WithBaseURL(u string) Option {
	return func(t *Translator) { t.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(t *Translator) { t.client = c }
}

// NewTranslator creates a Google web translator. timeout bounds each request.
func NewTranslator(timeout time.Duration, opts ...Option) *Translator {
	t := &Translator{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Translator) Name() string {
	return "google"
}

func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == "" {
		source = domain.AutoLanguage
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("google translate: rate limited (HTTP 429)")
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("google translate: HTTP %d", resp.StatusCode)
	}

	translated, err := parseResponse(body)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	return translated, nil
}

// parseResponse reads the sentence array of a gtx reply:
// [[["translated","original",...],...],null,"en",...]
func parseResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("unexpected response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("unexpected response: empty")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("unexpected response: %w", err)
	}

	var sb strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(s[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("unexpected response: no translation")
	}
	return out, nil
}

var _ ports.Translator = (*Translator)(nil)
