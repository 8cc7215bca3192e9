package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

func sampleTranscript() *domain.Transcript {
	return &domain.Transcript{
		Text: "Hello world",
		Segments: []domain.Segment{
			{Start: 0, End: 1.25, Text: "Hello world"},
		},
		Model:    "base",
		Language: "en",
	}
}

func TestFileCache_SetGet(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)

	ctx := context.Background()
	item := &ports.CachedItem{
		Source:     "talk.mp3",
		Transcript: sampleTranscript(),
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	if err := cache.Set(ctx, "abc123", item); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.Source != "talk.mp3" {
		t.Errorf("Get() source = %s, want talk.mp3", got.Source)
	}
	if got.Transcript.Text != "Hello world" {
		t.Errorf("Get() transcript text = %s, want Hello world", got.Transcript.Text)
	}
	if len(got.Transcript.Segments) != 1 || got.Transcript.Segments[0].End != 1.25 {
		t.Errorf("Get() segments = %+v", got.Transcript.Segments)
	}
	if got.Transcript.Language != "en" {
		t.Errorf("Get() language = %s, want en", got.Transcript.Language)
	}
}

func TestFileCache_DefaultTTL(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	if err := cache.Set(ctx, "nottl", &ports.CachedItem{Transcript: sampleTranscript()}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := cache.Get(ctx, "nottl")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if d := got.ExpiresAt.Sub(got.CreatedAt); d != time.Hour {
		t.Errorf("expiry = %v after creation, want 1h", d)
	}
}

func TestFileCache_GetMiss(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)

	_, err := cache.Get(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestFileCache_GetExpired(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)

	ctx := context.Background()
	item := &ports.CachedItem{
		Transcript: sampleTranscript(),
		CreatedAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt:  time.Now().Add(-24 * time.Hour),
	}
	if err := cache.Set(ctx, "expired123", item); err != nil {
		t.Fatal(err)
	}

	_, err := cache.Get(ctx, "expired123")
	if !errors.Is(err, domain.ErrCacheExpired) {
		t.Errorf("Get() error = %v, want ErrCacheExpired", err)
	}
}

func TestFileCache_InvalidKey(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := cache.Set(ctx, key, &ports.CachedItem{Transcript: sampleTranscript()}); err == nil {
			t.Errorf("Set(%q) error = nil, want error", key)
		}
		if err := cache.Delete(ctx, key); err == nil {
			t.Errorf("Delete(%q) error = nil, want error", key)
		}
	}
}

func TestFileCache_CleanExpired(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir, time.Hour)
	ctx := context.Background()

	_ = cache.Set(ctx, "expired", &ports.CachedItem{
		Transcript: sampleTranscript(),
		CreatedAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt:  time.Now().Add(-24 * time.Hour),
	})
	_ = cache.Set(ctx, "valid", &ports.CachedItem{
		Transcript: sampleTranscript(),
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	})

	corrupt := filepath.Join(dir, "corrupt")
	if err := os.MkdirAll(corrupt, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(corrupt, metaName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cleaned, err := cache.CleanExpired(ctx)
	if err != nil {
		t.Fatalf("CleanExpired() error = %v", err)
	}
	if cleaned != 2 {
		t.Errorf("CleanExpired() = %d, want 2", cleaned)
	}

	if _, err := cache.Get(ctx, "valid"); err != nil {
		t.Errorf("valid item was removed: %v", err)
	}
	if _, err := cache.Get(ctx, "expired"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("expired item still present: %v", err)
	}
}

func TestFileCache_ClearAndStats(t *testing.T) {
	cache := NewFileCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	for _, key := range []string{"one", "two"} {
		if err := cache.Set(ctx, key, &ports.CachedItem{Transcript: sampleTranscript()}); err != nil {
			t.Fatal(err)
		}
	}

	count, size, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Stats() count = %d, want 2", count)
	}
	if size <= 0 {
		t.Errorf("Stats() size = %d, want > 0", size)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	count, _, _ = cache.Stats(ctx)
	if count != 0 {
		t.Errorf("Stats() after Clear count = %d, want 0", count)
	}
}

func TestFileCache_MissingBaseDir(t *testing.T) {
	cache := NewFileCache(filepath.Join(t.TempDir(), "absent"), time.Hour)
	ctx := context.Background()

	if n, err := cache.CleanExpired(ctx); err != nil || n != 0 {
		t.Errorf("CleanExpired() = %d, %v", n, err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
}
