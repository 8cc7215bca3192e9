package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/devbush/subtranslate/internal/ports"
)

// statsCacheStore is a ports.CacheStore with canned Stats/CleanExpired/Clear results.
type statsCacheStore struct {
	root        string
	transcripts int
	size        int64
	cleaned     int
	err         error
}

func (m *statsCacheStore) Get(ctx context.Context, key string) (*ports.CachedItem, error) {
	return nil, nil
}

func (m *statsCacheStore) Set(ctx context.Context, key string, item *ports.CachedItem) error {
	return nil
}

func (m *statsCacheStore) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *statsCacheStore) CleanExpired(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.cleaned, nil
}

func (m *statsCacheStore) Clear(ctx context.Context) error {
	return m.err
}

func (m *statsCacheStore) GetCacheDir(key string) string {
	return filepath.Join(m.root, key)
}

func (m *statsCacheStore) Stats(ctx context.Context) (int, int64, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.transcripts, m.size, nil
}

func TestCacheService_Stats(t *testing.T) {
	store := &statsCacheStore{root: "/var/cache/subtranslate", transcripts: 4, size: 3 << 20}
	svc := NewCacheService(store, 7*24*time.Hour)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Transcripts != 4 {
		t.Errorf("Transcripts = %d, want 4", stats.Transcripts)
	}
	if stats.TotalSize != 3<<20 {
		t.Errorf("TotalSize = %d, want %d", stats.TotalSize, 3<<20)
	}
	if stats.Dir != "/var/cache/subtranslate" {
		t.Errorf("Dir = %q, want the cache root", stats.Dir)
	}
	if stats.TTL != 168*time.Hour {
		t.Errorf("TTL = %v, want 168h", stats.TTL)
	}
}

func TestCacheService_Errors(t *testing.T) {
	wantErr := errors.New("cache dir unreadable")
	svc := NewCacheService(&statsCacheStore{err: wantErr}, time.Hour)
	ctx := context.Background()

	if _, err := svc.Stats(ctx); !errors.Is(err, wantErr) {
		t.Errorf("Stats() error = %v, want %v", err, wantErr)
	}
	if _, err := svc.CleanExpired(ctx); !errors.Is(err, wantErr) {
		t.Errorf("CleanExpired() error = %v, want %v", err, wantErr)
	}
	if err := svc.Clear(ctx); !errors.Is(err, wantErr) {
		t.Errorf("Clear() error = %v, want %v", err, wantErr)
	}
}

func TestCacheService_CleanExpired(t *testing.T) {
	svc := NewCacheService(&statsCacheStore{cleaned: 2}, time.Hour)

	n, err := svc.CleanExpired(context.Background())
	if err != nil {
		t.Fatalf("CleanExpired() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
}
