package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

// mockCache is an in-memory ports.CacheStore
type mockCache struct {
	mu    sync.Mutex
	items map[string]*ports.CachedItem
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string]*ports.CachedItem)}
}

func (m *mockCache) Get(ctx context.Context, key string) (*ports.CachedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[key]; ok {
		return item, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, item *ports.CachedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = item
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *mockCache) CleanExpired(ctx context.Context) (int, error) { return 0, nil }
func (m *mockCache) Clear(ctx context.Context) error              { return nil }
func (m *mockCache) GetCacheDir(key string) string                { return "/tmp/" + key }
func (m *mockCache) Stats(ctx context.Context) (int, int64, error) {
	return len(m.items), 0, nil
}

// mockExtractor passes audio through and writes a fake WAV for video
type mockExtractor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockExtractor) Extract(ctx context.Context, inputPath string, kind domain.MediaKind, destDir string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if kind == domain.MediaAudio {
		return inputPath, nil
	}
	out := filepath.Join(destDir, "audio.wav")
	if err := os.WriteFile(out, []byte("RIFF"), 0644); err != nil {
		return "", err
	}
	return out, nil
}

func (m *mockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockTranscriber returns a fixed transcript
type mockTranscriber struct {
	mu         sync.Mutex
	calls      int
	lastOpts   ports.TranscribeOpts
	transcript *domain.Transcript
	err        error
}

func newMockTranscriber() *mockTranscriber {
	return &mockTranscriber{
		transcript: &domain.Transcript{
			Text: "Hello world. How are you?",
			Segments: []domain.Segment{
				{Start: 0, End: 3.5, Text: " Hello world."},
				{Start: 3.5, End: 7.2, Text: " How are you?"},
			},
			Language: "english",
		},
	}
}

func (m *mockTranscriber) Name() string { return "mock" }

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	tr := *m.transcript
	tr.Segments = append([]domain.Segment(nil), m.transcript.Segments...)
	tr.Model = opts.Model
	tr.TranscribedAt = time.Now()
	return &tr, nil
}

func (m *mockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type translateCall struct {
	text, source, target string
}

// mockTranslator prefixes text with the target language and fails on
// configured inputs
type mockTranslator struct {
	mu     sync.Mutex
	calls  []translateCall
	failOn map[string]error
}

func newMockTranslator() *mockTranslator {
	return &mockTranslator{failOn: make(map[string]error)}
}

func (m *mockTranslator) Name() string { return "mock" }

func (m *mockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, translateCall{text: text, source: source, target: target})
	if err, ok := m.failOn[text]; ok {
		return "", err
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

func (m *mockTranslator) Calls() []translateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]translateCall(nil), m.calls...)
}
