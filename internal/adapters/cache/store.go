// Package cache persists transcripts on disk, one directory per key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

const metaName = "transcript.json"

// FileCache stores each transcript as <baseDir>/<key>/transcript.json
type FileCache struct {
	baseDir string
	ttl     time.Duration
}

// NewFileCache creates a cache rooted at baseDir. ttl applies to items
// stored without an expiry.
func NewFileCache(baseDir string, ttl time.Duration) *FileCache {
	return &FileCache{
		baseDir: baseDir,
		ttl:     ttl,
	}
}

type entry struct {
	Source     string             `json:"source"`
	Transcript *domain.Transcript `json:"transcript"`
	CreatedAt  time.Time          `json:"created_at"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

func (c *FileCache) GetCacheDir(key string) string {
	return filepath.Join(c.baseDir, key)
}

func (c *FileCache) metaPath(key string) string {
	return filepath.Join(c.GetCacheDir(key), metaName)
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}

func (c *FileCache) Get(ctx context.Context, key string) (*ports.CachedItem, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if e.Transcript == nil {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(e.ExpiresAt) {
		return nil, domain.ErrCacheExpired
	}

	return &ports.CachedItem{
		Source:     e.Source,
		Transcript: e.Transcript,
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
	}, nil
}

func (c *FileCache) Set(ctx context.Context, key string, item *ports.CachedItem) error {
	if err := validKey(key); err != nil {
		return err
	}

	dir := c.GetCacheDir(key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	e := entry{
		Source:     item.Source,
		Transcript: item.Transcript,
		CreatedAt:  item.CreatedAt,
		ExpiresAt:  item.ExpiresAt,
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.ExpiresAt.IsZero() {
		e.ExpiresAt = e.CreatedAt.Add(c.ttl)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}

	// Readers never observe a half written entry
	tmp, err := os.CreateTemp(dir, metaName+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.metaPath(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return os.RemoveAll(c.GetCacheDir(key))
}

func (c *FileCache) keys() ([]string, error) {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

// CleanExpired removes expired and unreadable entries
func (c *FileCache) CleanExpired(ctx context.Context) (int, error) {
	keys, err := c.keys()
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return cleaned, err
		}
		_, err := c.Get(ctx, key)
		if err == nil || errors.Is(err, domain.ErrCacheMiss) {
			continue
		}
		if err := c.Delete(ctx, key); err == nil {
			cleaned++
		}
	}

	return cleaned, nil
}

func (c *FileCache) Clear(ctx context.Context) error {
	keys, err := c.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		_ = os.RemoveAll(filepath.Join(c.baseDir, key))
	}
	return nil
}

func (c *FileCache) Stats(ctx context.Context) (itemCount int, totalSize int64, err error) {
	keys, err := c.keys()
	if err != nil {
		return 0, 0, err
	}

	for _, key := range keys {
		itemCount++
		_ = filepath.WalkDir(c.GetCacheDir(key), func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				totalSize += info.Size()
			}
			return nil
		})
	}

	return itemCount, totalSize, nil
}

var _ ports.CacheStore = (*FileCache)(nil)
