package ports

import "context"

// Translator turns text in one language into another. source may be "auto".
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}
