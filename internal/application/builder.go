package application

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/devbush/subtranslate/internal/domain"
)

// FailurePolicy decides what a failed segment translation does to the build
type FailurePolicy int

const (
	// FailFast aborts the whole document on the first failed segment
	FailFast FailurePolicy = iota
	// Placeholder keeps the untranslated text for the failed cue and continues
	Placeholder
)

// ParseFailurePolicy maps "fail" and "placeholder" to a policy
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(s) {
	case "", "fail", "fail-fast":
		return FailFast, nil
	case "placeholder":
		return Placeholder, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy: %s", s)
	}
}

func (p FailurePolicy) String() string {
	if p == Placeholder {
		return "placeholder"
	}
	return "fail"
}

// TranslateFunc translates the text of one segment
type TranslateFunc func(ctx context.Context, text string) (string, error)

// BuildOptions configures document building
type BuildOptions struct {
	Width       int // wrap width in cells
	Concurrency int // max in-flight translations, 1 = sequential
	Policy      FailurePolicy
}

// BuildResult is a built document plus what happened while building it
type BuildResult struct {
	Document     domain.Document
	Translations []string // per-segment translations before wrapping
	Substituted  []int    // indices of cues that kept their original text
}

// Subtitle returns the serialized document
func (r *BuildResult) Subtitle() string {
	return r.Document.String()
}

// JoinedTranslation concatenates all non-empty segment translations
func (r *BuildResult) JoinedTranslation() string {
	parts := make([]string, 0, len(r.Translations))
	for _, t := range r.Translations {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// DocumentBuilder turns transcript segments into a translated subtitle document
type DocumentBuilder struct {
	opts BuildOptions
}

// NewDocumentBuilder creates a builder, filling unset options with defaults
func NewDocumentBuilder(opts BuildOptions) *DocumentBuilder {
	if opts.Width <= 0 {
		opts.Width = domain.DefaultWrapWidth
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &DocumentBuilder{opts: opts}
}

// Options returns the effective options
func (b *DocumentBuilder) Options() BuildOptions {
	return b.opts
}

// Build translates every segment and emits one cue per segment, in order.
// Segments are validated before any translation is requested.
func (b *DocumentBuilder) Build(ctx context.Context, segments []domain.Segment, translate TranslateFunc) (*BuildResult, error) {
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
	}

	translations := make([]string, len(segments))
	substituted := make([]bool, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)

	for i, seg := range segments {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			text := strings.TrimSpace(seg.Text)
			if text == "" {
				return nil
			}

			out, err := translate(gctx, text)
			if err != nil {
				if b.opts.Policy == Placeholder && ctx.Err() == nil {
					translations[i] = text
					substituted[i] = true
					return nil
				}
				return fmt.Errorf("cue %d: %w: %w", i+1, domain.ErrTranslationFailed, err)
			}
			translations[i] = strings.TrimSpace(out)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BuildResult{
		Document:     domain.Document{Cues: make([]domain.Cue, len(segments))},
		Translations: translations,
	}
	for i, seg := range segments {
		cue, err := domain.NewCue(i+1, seg, domain.Wrap(translations[i], b.opts.Width))
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		result.Document.Cues[i] = cue
		if substituted[i] {
			result.Substituted = append(result.Substituted, i+1)
		}
	}

	return result, nil
}

// BuildDocument is the single-call form of DocumentBuilder.Build returning
// the serialized document.
func BuildDocument(ctx context.Context, segments []domain.Segment, translate TranslateFunc, opts BuildOptions) (string, error) {
	result, err := NewDocumentBuilder(opts).Build(ctx, segments, translate)
	if err != nil {
		return "", err
	}
	return result.Subtitle(), nil
}
