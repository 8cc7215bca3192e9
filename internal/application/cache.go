package application

import (
	"context"
	"time"

	"github.com/devbush/subtranslate/internal/ports"
)

// CacheStats describes the transcript cache.
type CacheStats struct {
	Transcripts int
	TotalSize   int64
	Dir         string
	TTL         time.Duration
}

// CacheService manages cached transcripts.
type CacheService struct {
	store ports.CacheStore
	ttl   time.Duration
}

// NewCacheService wraps store. ttl is the expiry given to new transcripts.
func NewCacheService(store ports.CacheStore, ttl time.Duration) *CacheService {
	return &CacheService{store: store, ttl: ttl}
}

// Stats counts the cached transcripts and their size on disk.
func (s *CacheService) Stats(ctx context.Context) (*CacheStats, error) {
	count, size, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &CacheStats{
		Transcripts: count,
		TotalSize:   size,
		Dir:         s.store.GetCacheDir(""),
		TTL:         s.ttl,
	}, nil
}

// CleanExpired drops transcripts past their expiry and returns how many went.
func (s *CacheService) CleanExpired(ctx context.Context) (int, error) {
	return s.store.CleanExpired(ctx)
}

func (s *CacheService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
